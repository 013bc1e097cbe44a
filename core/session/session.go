package session

import "slices"

// Apps that can be chosen as the default landing bundle.
const (
	AppConsole = "console"
	AppProfile = "profile"
	AppSearch  = "search"
)

var knownApps = []string{AppConsole, AppProfile, AppSearch}

// IsKnownApp reports whether app can be stored as Preferences.DefaultApp.
func IsKnownApp(app string) bool {
	return slices.Contains(knownApps, app)
}

// Preferences is the closed set of user preferences kept in a session.
type Preferences struct {
	DefaultApp string `json:"defaultApp,omitempty"`
}

// Validate rejects unknown default apps. An empty value is allowed.
func (p Preferences) Validate() error {
	if p.DefaultApp != "" && !IsKnownApp(p.DefaultApp) {
		return ErrInvalidDefaultApp
	}
	return nil
}

// merge copies the non-empty fields of other into p.
func (p *Preferences) merge(other Preferences) {
	if other.DefaultApp != "" {
		p.DefaultApp = other.DefaultApp
	}
}

// Auth tracks where a visitor is in the sign-up and sign-in flow.
type Auth struct {
	HasVisitedBefore      bool   `json:"hasVisitedBefore"`
	HasAccount            bool   `json:"hasAccount"`
	LastAuthPage          string `json:"lastAuthPage,omitempty"`
	RegistrationStartedAt *int64 `json:"registrationStartedAt,omitempty"`
}

// Session is the state stored for one browser. Timestamps are Unix milliseconds.
type Session struct {
	ID             string       `json:"-"`
	Authenticated  bool         `json:"authenticated"`
	UserID         string       `json:"userId,omitempty"`
	Username       string       `json:"username,omitempty"`
	CreatedAt      int64        `json:"createdAt"`
	LastActivityAt int64        `json:"lastActivityAt"`
	Preferences    *Preferences `json:"preferences,omitempty"`
	Auth           *Auth        `json:"auth,omitempty"`
}

// IsAuthenticated reports whether the session belongs to a signed-in user.
func (s Session) IsAuthenticated() bool {
	return s.Authenticated
}

// DefaultApp returns the preferred bundle or "" when none is set.
func (s Session) DefaultApp() string {
	if s.Preferences == nil {
		return ""
	}
	return s.Preferences.DefaultApp
}

func (s *Session) auth() *Auth {
	if s.Auth == nil {
		s.Auth = &Auth{}
	}
	return s.Auth
}
