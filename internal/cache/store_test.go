package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrefarina/salesops-cli-go/internal/erp"
	"github.com/andrefarina/salesops-cli-go/internal/monthkey"
)

func TestStoreSetStampsCountAndTimestamp(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend()
	store := NewStore(backend).WithClock(fixedClock(now))

	key := monthkey.Key{Year: 2025, Month: 4}
	records := []erp.SaleLineRecord{
		saleLine("s1", time.Date(2025, time.April, 3, 0, 0, 0, 0, time.UTC), 10),
		saleLine("s2", time.Date(2025, time.April, 9, 0, 0, 0, 0, time.UTC), 20),
	}
	require.NoError(t, store.Set(key, records))

	entry := store.Get(key)
	require.NotNil(t, entry)
	assert.Equal(t, key, entry.Key)
	assert.Equal(t, 2, entry.RecordCount)
	assert.True(t, entry.LastUpdated.Equal(now))
}

func TestStoreSetIsFullReplace(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	store := NewStore(NewMemoryBackend()).WithClock(fixedClock(now))

	key := monthkey.Key{Year: 2025, Month: 4}
	require.NoError(t, store.Set(key, []erp.SaleLineRecord{
		saleLine("s1", time.Date(2025, time.April, 3, 0, 0, 0, 0, time.UTC), 10),
		saleLine("s2", time.Date(2025, time.April, 9, 0, 0, 0, 0, time.UTC), 20),
	}))
	require.NoError(t, store.Set(key, []erp.SaleLineRecord{
		saleLine("s3", time.Date(2025, time.April, 11, 0, 0, 0, 0, time.UTC), 30),
	}))

	entry := store.Get(key)
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.RecordCount, "second write replaces, never merges")
	assert.Equal(t, "s3", entry.Records[0].SaleID)
}

func TestStoreGetMissingIsNil(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	assert.Nil(t, store.Get(monthkey.Key{Year: 2030, Month: 1}))
}

func TestStoreDeleteThenGet(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	store := NewStore(NewMemoryBackend()).WithClock(fixedClock(now))

	key := monthkey.Key{Year: 2025, Month: 4}
	require.NoError(t, store.Set(key, nil))
	require.NotNil(t, store.Get(key))
	require.NoError(t, store.Delete(key))
	assert.Nil(t, store.Get(key))
}

func TestStoreSummaryRollsUpEntries(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	backend := NewMemoryBackend()
	store := NewStore(backend).WithClock(fixedClock(now))

	older := now.Add(-48 * time.Hour)
	backend.Seed(
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 3}, RecordCount: 4, LastUpdated: older},
		&MonthEntry{Key: monthkey.Key{Year: 2025, Month: 4}, RecordCount: 6, LastUpdated: now},
	)

	summary, err := store.Summary()
	require.NoError(t, err)

	assert.Equal(t, 2, summary.EntryCount)
	assert.Equal(t, 10, summary.RecordCount)
	assert.Equal(t, int64(10*estBytesPerRecord), summary.SizeBytes)
	assert.True(t, summary.Oldest.Equal(older))
	assert.True(t, summary.Newest.Equal(now))
	require.Len(t, summary.Months, 2)
	assert.Equal(t, "2025-03", summary.Months[0].String())
	assert.Equal(t, "2025-04", summary.Months[1].String())
}

func TestMemoryBackendCopiesOnReadAndWrite(t *testing.T) {
	backend := NewMemoryBackend()
	key := monthkey.Key{Year: 2025, Month: 4}

	original := &MonthEntry{
		Key:         key,
		Records:     []erp.SaleLineRecord{saleLine("s1", time.Date(2025, time.April, 3, 0, 0, 0, 0, time.UTC), 10)},
		RecordCount: 1,
	}
	require.NoError(t, backend.Write(original))

	// Mutating the caller's slice after Write must not leak into the store.
	original.Records[0].SaleID = "mutated"

	first, err := backend.Read(key)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "s1", first.Records[0].SaleID)

	// Mutating a read result must not affect later reads.
	first.Records[0].SaleID = "also-mutated"
	second, err := backend.Read(key)
	require.NoError(t, err)
	assert.Equal(t, "s1", second.Records[0].SaleID)
}
