package models

// User roles.
const (
	RoleHacker = "hacker"
	RoleMentor = "mentor"
	RoleAdmin  = "admin"
)

// UserProfile mirrors the backend session as returned by whoami.
type UserProfile struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	Location  string           `json:"location"`
	Zoomlink  string           `json:"zoomlink"`
	Discord   string           `json:"discord"`
	Phone     string           `json:"phone"`
	Preferred PreferredContact `json:"preferred"`
	LoggedIn  bool             `json:"loggedIn"`

	// Onboarding flags. When either is set the client must route to
	// the connect page before anything else.
	DiscordRequired bool `json:"discordRequired"`
	ContactRequired bool `json:"contactRequired"`
}

// ConnectRequired reports whether the mandatory onboarding step is
// still outstanding for this profile.
func (p UserProfile) ConnectRequired() bool {
	return p.DiscordRequired || p.ContactRequired
}

// UserUpdate is the payload for the update-user endpoint. Empty
// fields are sent as-is; the backend validates them.
type UserUpdate struct {
	Role      string           `json:"role"`
	Location  string           `json:"location"`
	Zoomlink  string           `json:"zoomlink"`
	Discord   string           `json:"discord"`
	Preferred PreferredContact `json:"preferred"`
	Password  string           `json:"password,omitempty"` // mentor password when upgrading role
}
