package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/and161185/storekeeper/internal/docstore"
	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
)

type failingStore struct {
	loadErr error
	saveErr error
}

var _ docstore.Store = (*failingStore)(nil)

func (f *failingStore) Load(context.Context) (*model.Snapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return model.NewSnapshot(), nil
}

func (f *failingStore) Save(context.Context, *model.Snapshot) error { return f.saveErr }

func ptr[T any](v T) *T { return &v }

func TestRepo_EmptyStoreStartsWithDefaults(t *testing.T) {
	r := New(docstore.NewMemory())
	st, err := r.Settings(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.DefaultSettings(), st)

	users, err := r.Users(context.Background())
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestRepo_UserUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	r := New(mem)

	u, err := r.UpsertUser(ctx, "u1", model.UserPatch{Username: ptr("alice"), Role: ptr(model.RoleAdmin)})
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "alice", u.Username)

	u, err = r.UpsertUser(ctx, "u1", model.UserPatch{Email: ptr("a@example.com")})
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "a@example.com", u.Email)

	got, err := r.UserByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)

	_, err = r.UserByID(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)

	saves := mem.Saves
	_, ok, err := r.DeleteUser(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, saves, mem.Saves, "unknown id must not save")

	removed, ok, err := r.DeleteUser(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", removed.Username)
	require.Equal(t, saves+1, mem.Saves)
	users, err := r.Users(ctx)
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestRepo_ProductUpsertKeepsStock(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	r := New(mem)

	buy := decimal.NewFromInt(1000)
	_, err := r.UpsertProduct(ctx, "p1", model.ProductPatch{Name: ptr("Teh"), BuyPrice: &buy})
	require.NoError(t, err)

	require.NoError(t, r.Update(ctx, func(s *model.Snapshot) error {
		s.Products[0].Stock = decimal.NewFromInt(4)
		return nil
	}))

	p, err := r.UpsertProduct(ctx, "p1", model.ProductPatch{Name: ptr("Teh Manis")})
	require.NoError(t, err)
	require.Equal(t, "Teh Manis", p.Name)
	require.True(t, p.Stock.Equal(decimal.NewFromInt(4)))
	require.True(t, p.BuyPrice.Equal(buy))

	ok, err := r.DeleteProduct(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)

	saves := mem.Saves
	ok, err = r.DeleteProduct(ctx, "p1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, saves, mem.Saves, "unknown id must not save")
	ps, err := r.Products(ctx)
	require.NoError(t, err)
	require.Empty(t, ps)
}

func TestRepo_PatchSettings(t *testing.T) {
	ctx := context.Background()
	r := New(docstore.NewMemory())

	st, err := r.PatchSettings(ctx, model.SettingsPatch{StoreName: ptr("Warung Bu Sri"), Theme: ptr("dark")})
	require.NoError(t, err)
	require.Equal(t, "Warung Bu Sri", st.StoreName)
	require.Equal(t, "dark", st.Theme)
	require.Equal(t, "IDR", st.Currency)
}

func TestRepo_UpdateFailureDoesNotSave(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	r := New(mem)

	boom := errors.New("boom")
	err := r.Update(ctx, func(s *model.Snapshot) error {
		s.Settings.StoreName = "changed"
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, mem.Saves)

	st, err := r.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, "Toko Saya", st.StoreName)
}

func TestRepo_StoreErrorsWrapIO(t *testing.T) {
	ctx := context.Background()

	r := New(&failingStore{loadErr: errors.New("disk")})
	_, err := r.Products(ctx)
	require.ErrorIs(t, err, errs.ErrIO)

	r = New(&failingStore{saveErr: errors.New("disk")})
	_, err = r.PatchSettings(ctx, model.SettingsPatch{Theme: ptr("dark")})
	require.ErrorIs(t, err, errs.ErrIO)
}

func TestRepo_ClearLoginAttempt(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	r := New(mem)

	ok, err := r.ClearLoginAttempt(ctx, "bob")
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, mem.Saves)

	require.NoError(t, r.Update(ctx, func(s *model.Snapshot) error {
		s.LoginAttempts["bob"] = model.LoginAttempt{Username: "bob", Count: 3}
		return nil
	}))
	ok, err = r.ClearLoginAttempt(ctx, "bob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, mem.Saves)

	require.NoError(t, r.View(ctx, func(s *model.Snapshot) error {
		require.NotContains(t, s.LoginAttempts, "bob")
		return nil
	}))
}

func TestRepo_UpdateNoChangeSkipsSave(t *testing.T) {
	mem := docstore.NewMemory()
	r := New(mem)

	err := r.Update(context.Background(), func(*model.Snapshot) error { return ErrNoChange })
	require.NoError(t, err)
	require.Zero(t, mem.Saves)
}
