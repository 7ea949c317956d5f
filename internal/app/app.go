// Package app is the single owner of the attendance state. It composes the
// directory, session, request and audit components and serializes every
// operation on them.
package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/audit"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/directory"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/request"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/seed"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/session"
)

// Policy holds the attendance rules.
type Policy struct {
	// Geofences maps a location type to its accepted radius. Locations
	// without an entry are not fenced.
	Geofences map[model.LocationType]session.Geofence
	// GracePeriod after shift start before a check-in counts as late.
	GracePeriod time.Duration
	// StrictSegments rejects check-out segments longer than the session.
	StrictSegments bool
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{GracePeriod: session.DefaultGracePeriod, StrictSegments: true}
}

// Options configures New.
type Options struct {
	Clock  clock.Clock
	Logger zerolog.Logger
	Seed   seed.Data
	Policy Policy
}

// App owns all state. It is safe for concurrent use.
type App struct {
	mu       sync.RWMutex
	clock    clock.Clock
	log      zerolog.Logger
	policy   Policy
	users    *directory.Store
	sessions *session.Manager
	requests *request.Engine
	audit    *audit.Log

	currentID string
	loggedIn  bool
}

// New builds an App from opts. The first seeded user becomes the current
// user; nobody is logged in.
func New(opts Options) *App {
	c := opts.Clock
	if c == nil {
		c = clock.Real(nil)
	}
	if opts.Policy.GracePeriod <= 0 {
		opts.Policy.GracePeriod = session.DefaultGracePeriod
	}

	a := &App{
		clock:    c,
		log:      opts.Logger,
		policy:   opts.Policy,
		users:    directory.NewStore(opts.Seed.Users),
		sessions: session.NewManager(c, opts.Seed.Attendance),
		requests: request.NewEngine(c, opts.Seed.Requests),
		audit:    audit.New(c, opts.Logger.With().Str("component", "audit").Logger(), opts.Seed.AuditLogs),
	}
	if users := a.users.List(); len(users) > 0 {
		a.currentID = users[0].ID
	}
	return a
}

// Now returns the App's current time.
func (a *App) Now() time.Time {
	return a.clock.Now()
}

// CurrentUser returns the acting user.
func (a *App) CurrentUser() (model.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.users.Get(a.currentID)
}

// LoggedIn reports whether a role login happened since the last logout.
func (a *App) LoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loggedIn
}

// SwitchUser makes id the acting user.
func (a *App) SwitchUser(id string) (model.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, err := a.users.Get(id)
	if err != nil {
		return model.User{}, err
	}
	a.currentID = u.ID
	return u, nil
}

// Login acts as the first user holding role.
func (a *App) Login(role model.Role) (model.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, err := a.users.FirstWithRole(role)
	if err != nil {
		return model.User{}, err
	}
	a.currentID = u.ID
	a.loggedIn = true
	return u, nil
}

// Logout ends the login. The acting user stays selected.
func (a *App) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loggedIn = false
}

// AuditLogs returns the audit trail, newest first.
func (a *App) AuditLogs() []model.AuditLog {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.audit.Entries()
}

// actor must be called with a.mu held.
func (a *App) actor() (model.User, error) {
	return a.users.Get(a.currentID)
}

func (a *App) rejected(op string, err error) error {
	a.log.Warn().Str("op", op).Str("user", a.currentID).Err(err).Msg("operation rejected")
	return err
}
