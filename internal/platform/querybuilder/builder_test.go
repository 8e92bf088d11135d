package querybuilder

import (
	"slices"
	"testing"
)

type statement interface {
	ToSQL() (string, []any, error)
}

func TestToSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stmt     statement
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "select with filters order and limit",
			stmt: Select("mix_id", "player_id", "kills").
				From("mix_player_map_stats").
				Where(In("mix_id", []any{"m1", "m2"}), Eq("player_id", "p1")).
				OrderBy("mix_id DESC").
				Limit(10),
			wantSQL:  "SELECT mix_id, player_id, kills FROM mix_player_map_stats WHERE mix_id IN ($1, $2) AND player_id = $3 ORDER BY mix_id DESC LIMIT 10",
			wantArgs: []any{"m1", "m2", "p1"},
		},
		{
			name:    "empty in matches nothing",
			stmt:    Select("*").From("mix_players").Where(In("mix_id", nil)),
			wantSQL: "SELECT * FROM mix_players WHERE 1=0",
		},
		{
			name:     "insert returning",
			stmt:     InsertInto("seasons").Columns("id", "nome").Values("s1", "Season 1").Suffix("RETURNING *"),
			wantSQL:  "INSERT INTO seasons (id, nome) VALUES ($1, $2) RETURNING *",
			wantArgs: []any{"s1", "Season 1"},
		},
		{
			name:     "multi row insert",
			stmt:     InsertInto("mix_player_map_team").Columns("mix_id", "player_id").Values("m1", "p1").Values("m1", "p2"),
			wantSQL:  "INSERT INTO mix_player_map_team (mix_id, player_id) VALUES ($1, $2), ($3, $4)",
			wantArgs: []any{"m1", "p1", "m1", "p2"},
		},
		{
			name: "upsert overwrites non key columns",
			stmt: InsertInto("mix_player_map_stats").
				Columns("mix_id", "player_id", "map_id", "kills").
				Values("m1", "p1", "d2", 12).
				OnConflict("mix_id", "player_id", "map_id"),
			wantSQL:  "INSERT INTO mix_player_map_stats (mix_id, player_id, map_id, kills) VALUES ($1, $2, $3, $4) ON CONFLICT (mix_id, player_id, map_id) DO UPDATE SET kills = EXCLUDED.kills",
			wantArgs: []any{"m1", "p1", "d2", 12},
		},
		{
			name:     "upsert of key only row does nothing",
			stmt:     InsertInto("mix_maps").Columns("mix_id", "map_id").Values("m1", "d2").OnConflict("mix_id", "map_id"),
			wantSQL:  "INSERT INTO mix_maps (mix_id, map_id) VALUES ($1, $2) ON CONFLICT (mix_id, map_id) DO NOTHING",
			wantArgs: []any{"m1", "d2"},
		},
		{
			name:     "update",
			stmt:     Update("profiles").Set("elo", 1011).Where(Eq("id", "p1")),
			wantSQL:  "UPDATE profiles SET elo = $1 WHERE id = $2",
			wantArgs: []any{1011, "p1"},
		},
		{
			name:     "delete",
			stmt:     DeleteFrom("mix_players").Where(Eq("mix_id", "m1"), Eq("player_id", "p1")),
			wantSQL:  "DELETE FROM mix_players WHERE mix_id = $1 AND player_id = $2",
			wantArgs: []any{"m1", "p1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sql, args, err := tt.stmt.ToSQL()
			if err != nil {
				t.Fatalf("to sql: %v", err)
			}
			if sql != tt.wantSQL {
				t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if !slices.Equal(args, tt.wantArgs) {
				t.Fatalf("unexpected args: %+v", args)
			}
		})
	}
}

func TestToSQL_Rejects(t *testing.T) {
	t.Parallel()

	tests := map[string]statement{
		"unsafe table":        Select("*").From("profiles; DROP TABLE profiles"),
		"unsafe column":       Select("*").From("profiles").Where(Eq("id = id OR 1", 1)),
		"unsafe order":        Select("*").From("profiles").OrderBy("elo; --"),
		"missing columns":     Select().From("profiles"),
		"ragged insert row":   InsertInto("mix_maps").Columns("mix_id", "map_id").Values("m1"),
		"upsert no target":    InsertInto("mix_maps").Columns("mix_id").Values("m1").OnConflict(),
		"update without sets": Update("profiles").Where(Eq("id", "p1")),
		"unfiltered delete":   DeleteFrom("mix_players"),
	}
	for name, stmt := range tests {
		if _, _, err := stmt.ToSQL(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
