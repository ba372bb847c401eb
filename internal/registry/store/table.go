package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"sftgate/internal/platform/tablestore"
	"sftgate/internal/registry/filter"
	"sftgate/internal/registry/models"
)

// Registry table layout: one partition holds every third-party record, keyed
// by the tenant ID, matching the backing store's single-table design.
const (
	registryTable     = "SftRegistry"
	registryPartition = "ThirdParty"
)

// Table is the table-store-backed registry store. All dynamic values reach
// the filter language through the filter package; there is no other
// interpolation path.
type Table struct {
	client tablestore.Client
}

// NewTable creates a registry store over the given table client.
func NewTable(client tablestore.Client) *Table {
	return &Table{client: client}
}

func (s *Table) Insert(ctx context.Context, tp *models.ThirdParty) error {
	return s.client.Insert(ctx, registryTable, toRow(tp))
}

func (s *Table) Update(ctx context.Context, tp *models.ThirdParty) error {
	return s.client.Upsert(ctx, registryTable, toRow(tp))
}

func (s *Table) GetByID(ctx context.Context, id string) (*models.ThirdParty, error) {
	row, err := s.client.Get(ctx, registryTable, registryPartition, id)
	if err != nil {
		return nil, err
	}
	return fromRow(row)
}

func (s *Table) FindByContainer(ctx context.Context, container string) ([]*models.ThirdParty, error) {
	rows, err := s.client.Query(ctx, registryTable,
		filter.ByPartitionAndProp(registryPartition, "ContainerName", container))
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func (s *Table) List(ctx context.Context) ([]*models.ThirdParty, error) {
	rows, err := s.client.Query(ctx, registryTable, filter.ByPartition(registryPartition))
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func toRow(tp *models.ThirdParty) tablestore.Row {
	return tablestore.Row{
		PartitionKey: registryPartition,
		RowKey:       tp.ID,
		Props: map[string]string{
			"CompanyName":         tp.CompanyName,
			"ContactEmail":        tp.ContactEmail,
			"ContainerName":       tp.ContainerName,
			"AutomationEnabled":   strconv.FormatBool(tp.AutomationEnabled),
			"ExternalIdentityRef": tp.ExternalIdentityRef,
			"CredentialRef":       tp.CredentialRef,
			"Status":              string(tp.Status),
			"CreatedAt":           tp.CreatedAt.UTC().Format(time.RFC3339Nano),
			"UpdatedAt":           tp.UpdatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
}

func fromRow(row tablestore.Row) (*models.ThirdParty, error) {
	automation, _ := strconv.ParseBool(row.Props["AutomationEnabled"])
	createdAt, err := time.Parse(time.RFC3339Nano, row.Props["CreatedAt"])
	if err != nil {
		return nil, fmt.Errorf("registry row %s: bad CreatedAt: %w", row.RowKey, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, row.Props["UpdatedAt"])
	if err != nil {
		return nil, fmt.Errorf("registry row %s: bad UpdatedAt: %w", row.RowKey, err)
	}
	return &models.ThirdParty{
		ID:                  row.RowKey,
		CompanyName:         row.Props["CompanyName"],
		ContactEmail:        row.Props["ContactEmail"],
		ContainerName:       row.Props["ContainerName"],
		AutomationEnabled:   automation,
		ExternalIdentityRef: row.Props["ExternalIdentityRef"],
		CredentialRef:       row.Props["CredentialRef"],
		Status:              models.Status(row.Props["Status"]),
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}, nil
}

func fromRows(rows []tablestore.Row) ([]*models.ThirdParty, error) {
	out := make([]*models.ThirdParty, 0, len(rows))
	for _, row := range rows {
		tp, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, nil
}
