package accounts_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/database"
)

const testSecret = "test-signing-secret"

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type publishedEvent struct {
	Exchange   string
	RoutingKey string
	Payload    any
}

type captureNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (n *captureNotifier) Publish(_ context.Context, exchange, routingKey string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{exchange, routingKey, payload})
	return n.err
}

func (n *captureNotifier) Events() []publishedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]publishedEvent(nil), n.events...)
}

func (n *captureNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

type fixture struct {
	db     *bun.DB
	repo   accounts.RepositoryManager
	svc    *accounts.Service
	tokens *accounts.TokenService
	events *captureNotifier
	clock  *testClock
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Open(ctx, database.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fsys, err := accounts.GetMigrationsFS(database.DriverSQLite)
	require.NoError(t, err)

	_, err = database.Migrate(ctx, db, fsys)
	require.NoError(t, err)
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	clock := newTestClock()
	events := &captureNotifier{}
	repo := accounts.NewRepositoryManager(db)

	tokens := accounts.NewTokenService(testSecret, time.Hour, accounts.DefaultIssuer,
		accounts.WithTokenClock(clock.Now),
	)

	creds := accounts.NewCredentials(
		accounts.WithClock(clock.Now),
		accounts.WithHashCost(bcrypt.MinCost),
	)

	svc := accounts.NewService(repo, tokens,
		accounts.WithCredentials(creds),
		accounts.WithNotifier(events),
		accounts.WithLogger(testLogger{}),
	)

	return &fixture{
		db:     db,
		repo:   repo,
		svc:    svc,
		tokens: tokens,
		events: events,
		clock:  clock,
	}
}

func createRequest(i int) accounts.CreateUserRequest {
	return accounts.CreateUserRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           fmt.Sprintf("ada%d@example.com", i),
		Phone:           fmt.Sprintf("0803%07d", i),
		City:            "Lagos",
		Gender:          "female",
		Password:        "Str0ng!Pass",
		ConfirmPassword: "Str0ng!Pass",
	}
}

// register creates an account and returns the plain OTP from its signup event
func (f *fixture) register(t *testing.T, req accounts.CreateUserRequest) (*accounts.User, string) {
	t.Helper()

	user, err := f.svc.Register(context.Background(), req, nil)
	require.NoError(t, err)

	events := f.events.Events()
	require.NotEmpty(t, events)
	signup, ok := events[len(events)-1].Payload.(accounts.SignupEvent)
	require.True(t, ok)
	return user, signup.OTP
}
