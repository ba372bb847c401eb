// Package store persists third-party registry records.
package store

import (
	"context"

	"sftgate/internal/registry/models"
)

// Store is the registry persistence contract. Missing records surface as
// sentinel.ErrNotFound (wrapped); duplicate IDs as sentinel.ErrAlreadyUsed.
// FindByContainer and List return zero or more records deterministically
// ordered by ID; finding nothing is an empty result, never an error.
type Store interface {
	Insert(ctx context.Context, tp *models.ThirdParty) error
	Update(ctx context.Context, tp *models.ThirdParty) error
	GetByID(ctx context.Context, id string) (*models.ThirdParty, error)
	FindByContainer(ctx context.Context, container string) ([]*models.ThirdParty, error)
	List(ctx context.Context) ([]*models.ThirdParty, error)
}
