package profile

const (
	DefaultElo      = 1000
	PlaceholderNick = "?"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// Profile is a registered player. Elo is only mutated by mix finalization.
type Profile struct {
	ID   string
	Nick string
	Name string
	Role Role
	Elo  int
}

// DisplayName prefers the nick and falls back to the full name.
func (p Profile) DisplayName() string {
	if p.Nick != "" {
		return p.Nick
	}
	if p.Name != "" {
		return p.Name
	}
	return PlaceholderNick
}

// Index maps profiles by id.
func Index(items []Profile) map[string]Profile {
	out := make(map[string]Profile, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}
