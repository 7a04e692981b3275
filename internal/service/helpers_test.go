package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	pkgcrypto "github.com/and161185/storekeeper/internal/crypto"
	"github.com/and161185/storekeeper/internal/docstore"
	"github.com/and161185/storekeeper/internal/model"
	"github.com/and161185/storekeeper/internal/notify"
	"github.com/and161185/storekeeper/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) Next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n), nil
}

type fakeNotifier struct {
	sent []notify.Message
	err  error
}

var _ notify.Notifier = (*fakeNotifier)(nil)

func (f *fakeNotifier) Send(_ context.Context, m notify.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	logins []string
	sales  int
	stock  []model.StockType
}

var _ Metrics = (*fakeMetrics)(nil)

func (m *fakeMetrics) LoginResult(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, outcome)
}

func (m *fakeMetrics) StockRecorded(tx model.StockTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock = append(m.stock, tx.Type)
}

func (m *fakeMetrics) SaleRecorded(model.Sale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales++
}

type env struct {
	mem     *docstore.Memory
	repo    *repository.Repo
	clock   *fakeClock
	metrics *fakeMetrics
	deps    Deps
}

var t0 = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) *env {
	t.Helper()
	mem := docstore.NewMemory()
	e := &env{
		mem:     mem,
		repo:    repository.New(mem),
		clock:   &fakeClock{now: t0},
		metrics: &fakeMetrics{},
	}
	ids := &seqIDs{}
	e.deps = Deps{Repo: e.repo, Now: e.clock.Now, NewID: ids.Next, Metrics: e.metrics}
	return e
}

// addUser stores a user directly, bypassing validation.
func (e *env) addUser(t *testing.T, id, username, password string, role model.Role, email string) model.User {
	t.Helper()
	hash, salt, err := pkgcrypto.NewSecret(password)
	if err != nil {
		t.Fatalf("NewSecret: %v", err)
	}
	u := model.User{ID: id, Username: username, PwdHash: hash, SaltAuth: salt, Role: role, Email: email, CreatedAt: t0}
	err = e.repo.Update(context.Background(), func(s *model.Snapshot) error {
		s.Users = append(s.Users, u)
		return nil
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (e *env) setAttempt(t *testing.T, a model.LoginAttempt) {
	t.Helper()
	err := e.repo.Update(context.Background(), func(s *model.Snapshot) error {
		s.LoginAttempts[a.Username] = a
		return nil
	})
	if err != nil {
		t.Fatalf("seed attempt: %v", err)
	}
}

func (e *env) attempt(t *testing.T, username string) (model.LoginAttempt, bool) {
	t.Helper()
	var (
		a  model.LoginAttempt
		ok bool
	)
	err := e.repo.View(context.Background(), func(s *model.Snapshot) error {
		a, ok = s.LoginAttempts[username]
		return nil
	})
	if err != nil {
		t.Fatalf("read attempt: %v", err)
	}
	return a, ok
}

func (e *env) product(t *testing.T, id string) model.Product {
	t.Helper()
	var p *model.Product
	err := e.repo.View(context.Background(), func(s *model.Snapshot) error {
		if found := s.ProductByID(id); found != nil {
			cp := *found
			p = &cp
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read product: %v", err)
	}
	if p == nil {
		t.Fatalf("product %s not found", id)
	}
	return *p
}

var (
	owner = Actor{UserID: "owner-1", Username: "boss", Role: model.RoleOwner}
	admin = Actor{UserID: "admin-1", Username: "alice", Role: model.RoleAdmin}
)
