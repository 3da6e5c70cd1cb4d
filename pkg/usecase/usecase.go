package usecase

import (
	"time"

	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/service/rostercache"
)

// Defaults applied when no option overrides them
const (
	DefaultRosterConcurrency  = 8
	DefaultEscalationLookback = 7 * 24 * time.Hour
	DefaultSessionTTL         = 12 * time.Hour
)

type UseCases struct {
	repo               interfaces.Repository
	rosterCache        interfaces.RosterCache
	notesDebounce      time.Duration
	rosterConcurrency  int
	escalationLookback time.Duration
	sessionTTL         time.Duration
	location           *time.Location
	clock              func() time.Time

	Insights     *InsightsUseCase
	Roster       *RosterUseCase
	Detail       *DetailUseCase
	Sessions     *SessionStore
	Notification *NotificationUseCase
	Export       *ExportUseCase
}

type Option func(*UseCases)

// WithRosterCache sets where roster snapshots are published
func WithRosterCache(cache interfaces.RosterCache) Option {
	return func(uc *UseCases) {
		uc.rosterCache = cache
	}
}

func WithNotesDebounce(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.notesDebounce = d
	}
}

func WithRosterConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.rosterConcurrency = n
	}
}

func WithEscalationLookback(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.escalationLookback = d
	}
}

func WithSessionTTL(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.sessionTTL = d
	}
}

// WithLocation sets the timezone used for chart labels and export dates
func WithLocation(loc *time.Location) Option {
	return func(uc *UseCases) {
		uc.location = loc
	}
}

// WithClock replaces time.Now, for tests
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:               repo,
		notesDebounce:      DefaultNotesDebounce,
		rosterConcurrency:  DefaultRosterConcurrency,
		escalationLookback: DefaultEscalationLookback,
		sessionTTL:         DefaultSessionTTL,
		location:           time.UTC,
		clock:              time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.rosterCache == nil {
		uc.rosterCache = rostercache.NewMemory()
	}

	now := func() time.Time { return uc.clock().In(uc.location) }

	uc.Insights = NewInsightsUseCase(repo)
	uc.Roster = NewRosterUseCase(repo, uc.rosterCache, uc.rosterConcurrency, now)
	uc.Detail = NewDetailUseCase(repo, uc.notesDebounce, now)
	uc.Sessions = NewSessionStore(uc.Detail, uc.sessionTTL, now)
	uc.Notification = NewNotificationUseCase(repo, uc.escalationLookback, now)
	uc.Export = NewExportUseCase(repo, uc.Roster, uc.location, now)

	return uc
}
