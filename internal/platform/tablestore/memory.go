package tablestore

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"sftgate/internal/sentinel"
)

// Memory is an in-process table store used for tests and the dev environment.
// Rows are kept sorted by (PartitionKey, RowKey) so query results match the
// ordering contract of the production backend.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

// NewMemory creates an empty in-memory table store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]Row)}
}

func (m *Memory) Query(ctx context.Context, table, filter string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conds, err := parseFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("bad filter: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Row
	for _, row := range m.tables[table] {
		if matches(row, conds) {
			out = append(out, copyRow(row))
		}
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table string, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	i := searchRow(rows, row.PartitionKey, row.RowKey)
	if i < len(rows) && rows[i].PartitionKey == row.PartitionKey && rows[i].RowKey == row.RowKey {
		return fmt.Errorf("row %s/%s: %w", row.PartitionKey, row.RowKey, sentinel.ErrAlreadyUsed)
	}
	row.Timestamp = time.Now().UTC()
	m.tables[table] = append(rows[:i], append([]Row{copyRow(row)}, rows[i:]...)...)
	return nil
}

func (m *Memory) Upsert(ctx context.Context, table string, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	row.Timestamp = time.Now().UTC()
	i := searchRow(rows, row.PartitionKey, row.RowKey)
	if i < len(rows) && rows[i].PartitionKey == row.PartitionKey && rows[i].RowKey == row.RowKey {
		rows[i] = copyRow(row)
		return nil
	}
	m.tables[table] = append(rows[:i], append([]Row{copyRow(row)}, rows[i:]...)...)
	return nil
}

func (m *Memory) Get(ctx context.Context, table, partition, rowKey string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.tables[table]
	i := searchRow(rows, partition, rowKey)
	if i < len(rows) && rows[i].PartitionKey == partition && rows[i].RowKey == rowKey {
		return copyRow(rows[i]), nil
	}
	return Row{}, fmt.Errorf("row %s/%s: %w", partition, rowKey, sentinel.ErrNotFound)
}

// searchRow returns the insertion index for (partition, rowKey) in the sorted
// row slice.
func searchRow(rows []Row, partition, rowKey string) int {
	return sort.Search(len(rows), func(i int) bool {
		if rows[i].PartitionKey != partition {
			return rows[i].PartitionKey >= partition
		}
		return rows[i].RowKey >= rowKey
	})
}

func copyRow(row Row) Row {
	out := row
	out.Props = maps.Clone(row.Props)
	return out
}
