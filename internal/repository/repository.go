// Package repository exposes typed access to the entities held in the store snapshot.
//
// Every call loads the whole snapshot from the document store, works on that copy and,
// for mutations, saves the whole snapshot back. Calls are serialised by a mutex so a
// load/compute/save cycle never interleaves with another one in the same process.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/and161185/storekeeper/internal/docstore"
	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
)

// ErrNoChange may be returned by an Update closure to end the cycle without saving.
// Update then returns nil.
var ErrNoChange = errors.New("no change")

// Repo is the entity repository over a docstore.Store.
type Repo struct {
	mu    sync.Mutex
	store docstore.Store
}

// New constructs a repository.
func New(store docstore.Store) *Repo { return &Repo{store: store} }

func (r *Repo) load(ctx context.Context) (*model.Snapshot, error) {
	s, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", errs.ErrIO, err)
	}
	if s == nil {
		s = model.NewSnapshot()
	}
	return s, nil
}

// View runs fn on a freshly loaded snapshot. Changes fn makes are discarded.
func (r *Repo) View(ctx context.Context, fn func(s *model.Snapshot) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(ctx)
	if err != nil {
		return err
	}
	return fn(s)
}

// Update runs fn on a freshly loaded snapshot and saves it when fn returns nil.
// When fn fails nothing is written.
func (r *Repo) Update(ctx context.Context, fn func(s *model.Snapshot) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	if err := r.store.Save(ctx, s); err != nil {
		return fmt.Errorf("%w: save: %w", errs.ErrIO, err)
	}
	return nil
}

// --- Users ---

// Users returns all users.
func (r *Repo) Users(ctx context.Context) (out []model.User, err error) {
	err = r.View(ctx, func(s *model.Snapshot) error {
		out = s.Users
		return nil
	})
	return out, err
}

// UserByID returns the user with id or errs.ErrNotFound.
func (r *Repo) UserByID(ctx context.Context, id string) (out model.User, err error) {
	err = r.View(ctx, func(s *model.Snapshot) error {
		u := s.UserByID(id)
		if u == nil {
			return fmt.Errorf("%w: user %s", errs.ErrNotFound, id)
		}
		out = *u
		return nil
	})
	return out, err
}

// UpsertUser patches the user with id, creating it when absent.
func (r *Repo) UpsertUser(ctx context.Context, id string, patch model.UserPatch) (out model.User, err error) {
	err = r.Update(ctx, func(s *model.Snapshot) error {
		i := s.UserIndex(id)
		if i < 0 {
			s.Users = append(s.Users, model.User{ID: id})
			i = len(s.Users) - 1
		}
		patch.Apply(&s.Users[i])
		out = s.Users[i]
		return nil
	})
	return out, err
}

// DeleteUser removes the user with id and returns it. Unknown ids are a no-op
// that saves nothing and reports false.
func (r *Repo) DeleteUser(ctx context.Context, id string) (removed model.User, ok bool, err error) {
	err = r.Update(ctx, func(s *model.Snapshot) error {
		i := s.UserIndex(id)
		if i < 0 {
			return ErrNoChange
		}
		removed, ok = s.Users[i], true
		s.Users = append(s.Users[:i], s.Users[i+1:]...)
		return nil
	})
	return removed, ok, err
}

// --- Products ---

// Products returns all products.
func (r *Repo) Products(ctx context.Context) (out []model.Product, err error) {
	err = r.View(ctx, func(s *model.Snapshot) error {
		out = s.Products
		return nil
	})
	return out, err
}

// UpsertProduct patches the product with id, creating it when absent. Stock is never patched.
func (r *Repo) UpsertProduct(ctx context.Context, id string, patch model.ProductPatch) (out model.Product, err error) {
	err = r.Update(ctx, func(s *model.Snapshot) error {
		i := s.ProductIndex(id)
		if i < 0 {
			s.Products = append(s.Products, model.Product{ID: id, Stock: decimal.Zero})
			i = len(s.Products) - 1
		}
		patch.Apply(&s.Products[i])
		out = s.Products[i]
		return nil
	})
	return out, err
}

// DeleteProduct removes the product with id. Its ledger rows stay. Unknown ids are a no-op
// that saves nothing and reports false.
func (r *Repo) DeleteProduct(ctx context.Context, id string) (ok bool, err error) {
	err = r.Update(ctx, func(s *model.Snapshot) error {
		i := s.ProductIndex(id)
		if i < 0 {
			return ErrNoChange
		}
		s.Products = append(s.Products[:i], s.Products[i+1:]...)
		ok = true
		return nil
	})
	return ok, err
}

// --- Ledger (append-only; appended through ledger operations inside Update) ---

// StockTransactions returns the stock ledger in insertion order.
func (r *Repo) StockTransactions(ctx context.Context) (out []model.StockTransaction, err error) {
	err = r.View(ctx, func(s *model.Snapshot) error {
		out = s.StockTransactions
		return nil
	})
	return out, err
}

// Sales returns recorded sales in insertion order.
func (r *Repo) Sales(ctx context.Context) (out []model.Sale, err error) {
	err = r.View(ctx, func(s *model.Snapshot) error {
		out = s.Sales
		return nil
	})
	return out, err
}

// --- Settings ---

// Settings returns the store settings.
func (r *Repo) Settings(ctx context.Context) (out model.Settings, err error) {
	err = r.View(ctx, func(s *model.Snapshot) error {
		out = s.Settings
		return nil
	})
	return out, err
}

// PatchSettings merges patch into the settings in place.
func (r *Repo) PatchSettings(ctx context.Context, patch model.SettingsPatch) (out model.Settings, err error) {
	err = r.Update(ctx, func(s *model.Snapshot) error {
		patch.Apply(&s.Settings)
		out = s.Settings
		return nil
	})
	return out, err
}

// --- Login attempts ---

// ClearLoginAttempt removes the throttle record for username and reports whether one existed.
func (r *Repo) ClearLoginAttempt(ctx context.Context, username string) (ok bool, err error) {
	err = r.Update(ctx, func(s *model.Snapshot) error {
		if _, ok = s.LoginAttempts[username]; !ok {
			return ErrNoChange
		}
		delete(s.LoginAttempts, username)
		return nil
	})
	return ok, err
}
