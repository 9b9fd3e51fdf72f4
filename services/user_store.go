package services

import (
	"context"
	"sync"

	"qstack-client/api"
	"qstack-client/models"
	"qstack-client/utils"
)

// Analytics receives session lifecycle transitions. The store fires it
// on edges only, never on steady-state refreshes.
type Analytics interface {
	OnLogin(profile models.UserProfile)
	OnLogout()
}

type noopAnalytics struct{}

func (noopAnalytics) OnLogin(models.UserProfile) {}
func (noopAnalytics) OnLogout()                  {}

type LoginState int

const (
	LoginUnknown LoginState = iota
	LoginOut
	LoginIn
)

// UserStore holds the current viewer's profile and login state. State
// starts unknown, resolves on the first whoami fetch, and resets on
// explicit logout.
type UserStore struct {
	api       *api.Client
	analytics Analytics

	mu      sync.RWMutex
	state   LoginState
	profile models.UserProfile
}

func NewUserStore(client *api.Client, analytics Analytics) *UserStore {
	if analytics == nil {
		analytics = noopAnalytics{}
	}
	return &UserStore{api: client, analytics: analytics}
}

func (u *UserStore) State() LoginState {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state
}

func (u *UserStore) LoggedIn() bool {
	return u.State() == LoginIn
}

func (u *UserStore) Profile() models.UserProfile {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.profile
}

// ConnectRequired reports whether the viewer must visit the connect
// page before using the rest of the app.
func (u *UserStore) ConnectRequired() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state == LoginIn && u.profile.ConnectRequired()
}

// Refresh re-fetches the profile. Transitions into the logged-in state
// identify the viewer to analytics; transitions out reset it. A fetch
// failure leaves the prior state untouched.
func (u *UserStore) Refresh(ctx context.Context) (models.UserProfile, error) {
	profile, err := u.api.Whoami(ctx)
	if err != nil {
		return u.Profile(), err
	}

	u.mu.Lock()
	prev := u.state
	u.profile = profile
	if profile.LoggedIn {
		u.state = LoginIn
	} else {
		u.state = LoginOut
	}
	state := u.state
	u.mu.Unlock()

	if state == LoginIn && prev != LoginIn {
		u.analytics.OnLogin(profile)
	}
	if state == LoginOut && prev == LoginIn {
		u.analytics.OnLogout()
	}
	return profile, nil
}

// Logout ends the session and resets local state.
func (u *UserStore) Logout(ctx context.Context) error {
	if err := u.api.Logout(ctx); err != nil {
		return err
	}

	u.mu.Lock()
	wasIn := u.state == LoginIn
	u.state = LoginOut
	u.profile = models.UserProfile{}
	u.mu.Unlock()

	if wasIn {
		u.analytics.OnLogout()
	}
	return nil
}

// SetPhone normalizes and validates the number before any request
// goes out; a malformed number is rejected locally.
func (u *UserStore) SetPhone(ctx context.Context, raw string) (api.Result, error) {
	phone := utils.NormalizePhone(raw)
	if !utils.ValidPhone(phone) {
		return api.Result{OK: false, Message: "Phone number must be 10 digits"}, nil
	}

	res, err := u.api.SetPhone(ctx, phone)
	if err != nil {
		return api.Result{OK: false, Message: err.Error()}, nil
	}
	if res.OK {
		u.Refresh(ctx)
	}
	return res, nil
}

// Update submits profile changes and re-fetches on success.
func (u *UserStore) Update(ctx context.Context, update models.UserUpdate) (api.Result, error) {
	res, err := u.api.UpdateUser(ctx, update)
	if err != nil {
		return api.Result{OK: false, Message: err.Error()}, nil
	}
	if res.OK {
		u.Refresh(ctx)
	}
	return res, nil
}

// DiscordLoginURL points the viewer at the backend's OAuth entry.
func (u *UserStore) DiscordLoginURL() string {
	return u.api.DiscordLoginURL()
}

// Rankings fetches the mentor leaderboard.
func (u *UserStore) Rankings(ctx context.Context) ([]models.MentorRanking, error) {
	return u.api.Rankings(ctx)
}
