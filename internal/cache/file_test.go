package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivaldir/curator/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "verdicts.json")
	store := NewFileStore(path)
	ctx := context.Background()

	verdicts := map[string]models.Verdict{
		"dnbeadz": {
			Score:         0.85,
			Reason:        "handmade kandi, shop link present",
			SellsProducts: boolPtr(true),
			HasShop:       boolPtr(true),
		},
		"ravebae": {Score: 0.1, Reason: "personal account"},
	}

	require.NoError(t, store.Save(ctx, verdicts))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, verdicts, loaded)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreEnvelopeLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.json")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string]models.Verdict{
		"maker": {Score: 0.7, Reason: "sells beadwork"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "scored_usernames")

	// v1-style verdicts carry no sub-verdicts; the fields must be absent,
	// not null, so older cache readers stay compatible.
	assert.NotContains(t, string(raw["scored_usernames"]), "sells_products")
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.json")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string]models.Verdict{"x": {Score: 0.5}}))
	require.NoError(t, store.Clear(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// Clearing an already-clear store is not an error.
	require.NoError(t, store.Clear(ctx))
}

func TestFileStoreCorruptCacheIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}
