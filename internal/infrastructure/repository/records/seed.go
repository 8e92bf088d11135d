package records

import (
	"github.com/riskibarqy/mix-league/internal/domain/profile"
	"github.com/riskibarqy/mix-league/internal/infrastructure/recordstore/memory"
	"github.com/riskibarqy/mix-league/internal/platform/recordstore"
)

// MemoryOptions declares every unique key of the schema on a memory store.
func MemoryOptions() []memory.Option {
	opts := make([]memory.Option, 0, len(UniqueKeys))
	for collection, keys := range UniqueKeys {
		for _, key := range keys {
			opts = append(opts, memory.WithUniqueKey(collection, key...))
		}
	}
	return opts
}

// SeedMapPool is the competitive map pool offered in a fresh memory store.
func SeedMapPool() []recordstore.Row {
	return []recordstore.Row{
		{"id": "de_ancient", "nome": "Ancient"},
		{"id": "de_anubis", "nome": "Anubis"},
		{"id": "de_dust2", "nome": "Dust II"},
		{"id": "de_inferno", "nome": "Inferno"},
		{"id": "de_mirage", "nome": "Mirage"},
		{"id": "de_nuke", "nome": "Nuke"},
		{"id": "de_train", "nome": "Train"},
	}
}

// SeedProfiles gives a memory store enough players to run a 5v5 mix.
func SeedProfiles() []recordstore.Row {
	return []recordstore.Row{
		{"id": "admin", "nick": "admin", "nome": "League Admin", "role": roleToStored[profile.RoleAdmin], "elo": 1000},
		{"id": "p-ace", "nick": "ace", "nome": "", "role": roleToStored[profile.RolePlayer], "elo": 1120},
		{"id": "p-bolt", "nick": "bolt", "nome": "", "role": roleToStored[profile.RolePlayer], "elo": 1064},
		{"id": "p-clutch", "nick": "clutch", "nome": "", "role": roleToStored[profile.RolePlayer], "elo": 1032},
		{"id": "p-deagle", "nick": "deagle", "nome": "", "role": roleToStored[profile.RolePlayer], "elo": 1010},
		{"id": "p-entry", "nick": "entry", "nome": "", "role": roleToStored[profile.RolePlayer], "elo": 998},
		{"id": "p-flash", "nick": "flash", "nome": "", "role": roleToStored[profile.RolePlayer], "elo": 985},
		{"id": "p-grenade", "nick": "grenade", "nome": "", "role": roleToStored[profile.RolePlayer], "elo": 961},
		{"id": "p-hs", "nick": "hs", "nome": "", "role": roleToStored[profile.RolePlayer], "elo": 940},
		{"id": "p-igl", "nick": "igl", "nome": "", "role": roleToStored[profile.RolePlayer], "elo": 922},
	}
}
