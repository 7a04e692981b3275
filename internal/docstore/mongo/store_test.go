package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/and161185/storekeeper/internal/docstore"
	"github.com/and161185/storekeeper/internal/model"
)

func TestRecord_BSONRoundTrip(t *testing.T) {
	snap := model.NewSnapshot()
	snap.Settings.StoreName = "Toko Baru"
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rec, err := toRecord("store", snap, now)
	require.NoError(t, err)
	require.Equal(t, "store", rec.ID)

	raw, err := bson.Marshal(rec)
	require.NoError(t, err)

	var back record
	require.NoError(t, bson.Unmarshal(raw, &back))
	require.Equal(t, rec.ID, back.ID)
	require.True(t, back.UpdatedAt.Equal(now))

	out, err := docstore.Decode([]byte(back.Doc))
	require.NoError(t, err)
	require.Equal(t, "Toko Baru", out.Settings.StoreName)
}

func TestToRecord_NilSnapshot(t *testing.T) {
	_, err := toRecord("store", nil, time.Now())
	require.Error(t, err)
}
