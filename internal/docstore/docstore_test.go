package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/and161185/storekeeper/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	s := model.NewSnapshot()
	s.Users = append(s.Users, model.User{ID: "u1", Username: "owner", Role: model.RoleOwner, CreatedAt: time.Unix(100, 0).UTC()})
	s.Products = append(s.Products, model.Product{
		ID:        "p1",
		Name:      "Kopi",
		Unit:      "pcs",
		BuyPrice:  decimal.NewFromInt(1000),
		SellPrice: decimal.NewFromInt(1500),
		Stock:     decimal.RequireFromString("7.5"),
	})
	s.LoginAttempts["bob"] = model.LoginAttempt{Username: "bob", Count: 2}
	return s
}

func TestDecode_NormalizesMissingCollections(t *testing.T) {
	s, err := Decode([]byte(`{"users":[{"id":"1","username":"x","role":"owner"}]}`))
	require.NoError(t, err)
	require.Equal(t, model.SnapshotVersion, s.Version)
	require.Len(t, s.Users, 1)
	require.NotNil(t, s.Products)
	require.NotNil(t, s.Sales)
	require.NotNil(t, s.StockTransactions)
	require.NotNil(t, s.LoginAttempts)
	require.Equal(t, model.DefaultSettings(), s.Settings)
}

func TestDecode_RejectsGarbageAndFutureVersion(t *testing.T) {
	_, err := Decode([]byte("{"))
	require.Error(t, err)

	_, err = Decode([]byte(`{"version":99}`))
	require.Error(t, err)
}

func TestMemory_LoadSave(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	got, err := m.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, m.Save(ctx, sampleSnapshot()))
	got, err = m.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Kopi", got.Products[0].Name)
	require.True(t, got.Products[0].Stock.Equal(decimal.RequireFromString("7.5")))

	// loads are independent copies
	got.Products[0].Name = "changed"
	again, err := m.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Kopi", again.Products[0].Name)

	m.SaveErr = errors.New("disk full")
	require.Error(t, m.Save(ctx, sampleSnapshot()))
	require.Equal(t, 1, m.Saves)
}

func TestFile_LoadSave(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	f := NewFile(path)

	got, err := f.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, f.Save(ctx, sampleSnapshot()))
	got, err = f.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "owner", got.Users[0].Username)
	require.Equal(t, 2, got.LoginAttempts["bob"].Count)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := NewFile(path).Load(context.Background())
	require.Error(t, err)
}

func TestFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFile(filepath.Join(t.TempDir(), "s.json"))

	require.ErrorIs(t, f.Save(ctx, sampleSnapshot()), context.Canceled)
	_, err := f.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
