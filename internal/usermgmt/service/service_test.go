package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store/drivers/sqlite"
	"github.com/aussiebroadwan/usermgmt/pkg/cryptox"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "usermgmt-service")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

var testHasher = cryptox.BcryptHasher{Cost: bcrypt.MinCost}

// fakeNotifier records every event it is handed.
type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *fakeNotifier) Notify(e domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *fakeNotifier) types() []domain.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.EventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

// fakeMailer remembers the last code per address.
type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[email] = code
	return nil
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
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

type fixture struct {
	store     store.Store
	notifier  *fakeNotifier
	mailer    *fakeMailer
	clock     *testClock
	accounts  *AccountService
	directory *DirectoryService
	verify    *VerificationService
	roles     *RolesService
	statuses  *AccountStatusService
	profiles  *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "usermgmt.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	f := &fixture{
		store:    s,
		notifier: &fakeNotifier{},
		mailer:   &fakeMailer{},
		clock:    &testClock{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
	}
	clock := Clock(f.clock.Now)
	f.accounts = &AccountService{Store: s, Hasher: testHasher, Notifier: f.notifier, Clock: clock}
	f.directory = &DirectoryService{Store: s, Hasher: testHasher, Notifier: f.notifier, Clock: clock}
	f.verify = &VerificationService{Store: s, Mailer: f.mailer, Notifier: f.notifier, Clock: clock}
	f.roles = &RolesService{Store: s}
	f.statuses = &AccountStatusService{Store: s}
	f.profiles = &ProfileService{Store: s, Notifier: f.notifier, Clock: clock}
	return f
}

func (f *fixture) addUser(t *testing.T, username, email, password string, roleID int64) domain.User {
	t.Helper()
	u, err := f.directory.AddUser(context.Background(), NewUser{
		Username: username,
		Email:    email,
		Password: password,
		RoleID:   roleID,
	})
	require.NoError(t, err)
	return u
}

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	in := time.Date(2026, 3, 14, 23, 59, 59, 0, time.FixedZone("AEST", 10*3600))
	require.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), startOfDay(in))
}

func TestCheckAdult(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	exactly18 := time.Date(2008, 3, 14, 0, 0, 0, 0, time.UTC)
	oneDayShort := time.Date(2008, 3, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, checkAdult(nil, now))
	require.NoError(t, checkAdult(&exactly18, now))
	require.ErrorIs(t, checkAdult(&oneDayShort, now), ErrUnderage)
}
