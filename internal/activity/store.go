package activity

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sftgate/internal/platform/tablestore"
	"sftgate/internal/registry/filter"
)

const activityTable = "SftActivity"

// Store persists activity records keyed by container.
type Store interface {
	Append(ctx context.Context, rec Record) error
	ListByContainer(ctx context.Context, container string, limit int) ([]Record, error)
	ListAll(ctx context.Context, limit int) ([]Record, error)
}

// TableStore keeps records in the table collaborator. The partition key is
// the container name; the row key counts down from the maximum timestamp so
// the store's ascending key order enumerates newest records first.
type TableStore struct {
	client tablestore.Client
}

// NewTableStore wraps the table client.
func NewTableStore(client tablestore.Client) *TableStore {
	return &TableStore{client: client}
}

// rowKeyFor builds a reverse-chronological row key. The uuid suffix keeps
// keys unique for records sharing a timestamp.
func rowKeyFor(at time.Time) string {
	remaining := math.MaxInt64 - at.UTC().UnixNano()
	return fmt.Sprintf("%020d_%s", remaining, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (s *TableStore) Append(ctx context.Context, rec Record) error {
	row := tablestore.Row{
		PartitionKey: rec.Container,
		RowKey:       rowKeyFor(rec.OccurredAt),
		Props: map[string]string{
			"Action":        string(rec.Action),
			"FileName":      rec.FileName,
			"Directory":     rec.Directory,
			"UserId":        rec.UserID,
			"SizeBytes":     strconv.FormatInt(rec.SizeBytes, 10),
			"CorrelationId": rec.CorrelationID,
			"OccurredAt":    rec.OccurredAt.UTC().Format(time.RFC3339Nano),
		},
	}
	return s.client.Insert(ctx, activityTable, row)
}

func (s *TableStore) ListByContainer(ctx context.Context, container string, limit int) ([]Record, error) {
	rows, err := s.client.Query(ctx, activityTable, filter.ByPartition(container))
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	recs := make([]Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, fromRow(row))
	}
	return recs, nil
}

// ListAll scans every container's records. The table returns rows grouped
// by partition, so the reverse-chronological keys are re-sorted globally
// before the limit applies.
func (s *TableStore) ListAll(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.client.Query(ctx, activityTable, "")
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RowKey < rows[j].RowKey })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	recs := make([]Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, fromRow(row))
	}
	return recs, nil
}

func fromRow(row tablestore.Row) Record {
	size, _ := strconv.ParseInt(row.Props["SizeBytes"], 10, 64)
	at, _ := time.Parse(time.RFC3339Nano, row.Props["OccurredAt"])
	return Record{
		Container:     row.PartitionKey,
		Action:        Action(row.Props["Action"]),
		FileName:      row.Props["FileName"],
		Directory:     row.Props["Directory"],
		UserID:        row.Props["UserId"],
		SizeBytes:     size,
		CorrelationID: row.Props["CorrelationId"],
		OccurredAt:    at,
	}
}
