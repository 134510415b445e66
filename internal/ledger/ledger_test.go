package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/unosat-hdx-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "publishstate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// get reads the stored entry for a product, or nil.
func get(t *testing.T, s *Store, productID string) (*Entry, error) {
	t.Helper()
	var entries []Entry
	if err := s.db.Where("product_id = ?", productID).Limit(1).Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func TestStore_AdvanceThroughStates(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Advance(ctx, "b1", "77", domain.StatePending, ""))
	require.NoError(t, s.Advance(ctx, "b1", "77", domain.StateDatasetCreated, "https://hdx/dataset/x"))
	clock.Advance(time.Minute)
	require.NoError(t, s.Advance(ctx, "b1", "77", domain.StateShowcaseCreated, ""))

	e, err := get(t, s, "77")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, domain.StateShowcaseCreated, e.State)
	assert.Equal(t, "https://hdx/dataset/x", e.DatasetURL)
	assert.Equal(t, "b1", e.Batch)
	assert.True(t, e.UpdatedAt.Equal(clock.Now()))
}

func TestStore_Incomplete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Advance(ctx, "b1", "1", domain.StateLogged, "https://hdx/dataset/one"))
	require.NoError(t, s.Advance(ctx, "b1", "2", domain.StateDatasetCreated, "https://hdx/dataset/two"))
	require.NoError(t, s.Advance(ctx, "b1", "3", domain.StatePending, ""))

	entries, err := s.Incomplete(ctx)
	require.NoError(t, err)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}
	assert.ElementsMatch(t, []string{"2", "3"}, ids)
}

func TestStore_LaterBatchResolvesEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Advance(ctx, "b1", "2", domain.StateDatasetCreated, "https://hdx/dataset/two"))
	require.NoError(t, s.Advance(ctx, "b2", "2", domain.StateLogged, ""))

	entries, err := s.Incomplete(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	e, err := get(t, s, "2")
	require.NoError(t, err)
	assert.Equal(t, "b2", e.Batch)
}

func TestStore_UnknownProductHasNoEntry(t *testing.T) {
	s := newTestStore(t)
	e, err := get(t, s, "404")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestNop(t *testing.T) {
	var n Nop
	require.NoError(t, n.Advance(context.Background(), "b", "1", domain.StateLogged, ""))
	entries, err := n.Incomplete(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
