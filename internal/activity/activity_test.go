package activity

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sftgate/internal/platform/tablestore"
	dErrors "sftgate/pkg/domain-errors"
	"sftgate/pkg/requestcontext"
)

func TestRowKeyFor_NewestSortsFirst(t *testing.T) {
	earlier := rowKeyFor(time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC))
	later := rowKeyFor(time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC))
	assert.Less(t, later, earlier, "later events must sort before earlier ones")
}

func TestTableStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	store := NewTableStore(tablestore.NewMemory())

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"first.csv", "second.csv", "third.csv"} {
		err := store.Append(ctx, Record{
			Container:  "sft-acme",
			Action:     ActionUpload,
			FileName:   name,
			Directory:  "inbound",
			UserID:     "sp-1",
			SizeBytes:  int64(100 * (i + 1)),
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recs, err := store.ListByContainer(ctx, "sft-acme", 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "third.csv", recs[0].FileName, "newest first")
	assert.Equal(t, "first.csv", recs[2].FileName)
	assert.Equal(t, int64(300), recs[0].SizeBytes)
	assert.Equal(t, ActionUpload, recs[0].Action)
}

func TestTableStore_ListLimitAndIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewTableStore(tablestore.NewMemory())

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, Record{
			Container: "sft-acme", Action: ActionDownload, FileName: "a.pdf", OccurredAt: at,
		}))
		at = at.Add(time.Second)
	}
	require.NoError(t, store.Append(ctx, Record{
		Container: "sft-other", Action: ActionUpload, FileName: "b.pdf", OccurredAt: at,
	}))

	recs, err := store.ListByContainer(ctx, "sft-acme", 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	other, err := store.ListByContainer(ctx, "sft-other", 0)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "b.pdf", other[0].FileName)
}

func TestTableStore_ListAll(t *testing.T) {
	ctx := context.Background()
	store := NewTableStore(tablestore.NewMemory())

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, Record{
		Container: "sft-acme", Action: ActionUpload, FileName: "old.pdf", OccurredAt: at,
	}))
	require.NoError(t, store.Append(ctx, Record{
		Container: "sft-other", Action: ActionUpload, FileName: "newer.pdf", OccurredAt: at.Add(time.Minute),
	}))
	require.NoError(t, store.Append(ctx, Record{
		Container: "sft-acme", Action: ActionDelete, FileName: "newest.pdf", OccurredAt: at.Add(2 * time.Minute),
	}))

	recs, err := store.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "newest.pdf", recs[0].FileName, "newest first across containers")
	assert.Equal(t, "sft-other", recs[1].Container)
	assert.Equal(t, "old.pdf", recs[2].FileName)

	limited, err := store.ListAll(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

type failingStore struct{ appended int }

func (f *failingStore) Append(context.Context, Record) error {
	f.appended++
	return errors.New("table unavailable")
}

func (f *failingStore) ListByContainer(context.Context, string, int) ([]Record, error) {
	return nil, errors.New("table unavailable")
}

func (f *failingStore) ListAll(context.Context, int) ([]Record, error) {
	return nil, errors.New("table unavailable")
}

func TestService_RecordIsBestEffort(t *testing.T) {
	store := &failingStore{}
	svc := NewService(store, slog.Default())

	// Must not panic or surface the failure.
	svc.Record(context.Background(), Record{Container: "sft-acme", Action: ActionUpload, FileName: "a.csv"})
	assert.Equal(t, 1, store.appended)
}

func TestService_RecordFillsDefaultsFromContext(t *testing.T) {
	mem := NewTableStore(tablestore.NewMemory())
	svc := NewService(mem, slog.Default())

	pinned := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithNow(context.Background(), pinned)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	svc.Record(ctx, Record{Container: "sft-acme", Action: ActionDelete, FileName: "old.xls"})

	recs, err := svc.List(ctx, "sft-acme", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, pinned, recs[0].OccurredAt)
	assert.Equal(t, "req-42", recs[0].CorrelationID)
}

func TestService_ListWrapsStoreFailure(t *testing.T) {
	svc := NewService(&failingStore{}, slog.Default())
	_, err := svc.List(context.Background(), "sft-acme", 0)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestService_ListSince(t *testing.T) {
	mem := NewTableStore(tablestore.NewMemory())
	svc := NewService(mem, slog.Default())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		svc.Record(ctx, Record{
			Container: "sft-acme", Action: ActionUpload,
			FileName:   "f.csv",
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	recs, err := svc.ListSince(ctx, "sft-acme", base.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
