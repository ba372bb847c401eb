package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sftgate/internal/registry/models"
	"sftgate/internal/sentinel"
)

// Postgres is the SQL-backed registry store for deployments with a relational
// backend. Unlike the table store, SQL has parameter binding, so no textual
// filter escaping is involved here.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a registry store over the given database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const registryColumns = `id, company_name, contact_email, container_name,
	automation_enabled, external_identity_ref, credential_ref, status,
	created_at, updated_at`

func (s *Postgres) Insert(ctx context.Context, tp *models.ThirdParty) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO third_parties (`+registryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		tp.ID, tp.CompanyName, tp.ContactEmail, tp.ContainerName,
		tp.AutomationEnabled, nullable(tp.ExternalIdentityRef), nullable(tp.CredentialRef),
		string(tp.Status), tp.CreatedAt, tp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert third party: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, tp *models.ThirdParty) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE third_parties
		SET company_name = $2, contact_email = $3, automation_enabled = $4,
		    external_identity_ref = $5, credential_ref = $6, status = $7,
		    updated_at = $8
		WHERE id = $1`,
		tp.ID, tp.CompanyName, tp.ContactEmail, tp.AutomationEnabled,
		nullable(tp.ExternalIdentityRef), nullable(tp.CredentialRef),
		string(tp.Status), tp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update third party: %w", err)
	}
	return nil
}

func (s *Postgres) GetByID(ctx context.Context, id string) (*models.ThirdParty, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+registryColumns+` FROM third_parties WHERE id = $1`, id)
	tp, err := scanThirdParty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("third party %s: %w", id, sentinel.ErrNotFound)
	}
	return tp, err
}

func (s *Postgres) FindByContainer(ctx context.Context, container string) ([]*models.ThirdParty, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+registryColumns+` FROM third_parties
		WHERE container_name = $1 ORDER BY id`, container)
	if err != nil {
		return nil, fmt.Errorf("find by container: %w", err)
	}
	defer rows.Close()
	return scanThirdParties(rows)
}

func (s *Postgres) List(ctx context.Context) ([]*models.ThirdParty, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+registryColumns+` FROM third_parties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list third parties: %w", err)
	}
	defer rows.Close()
	return scanThirdParties(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThirdParty(row rowScanner) (*models.ThirdParty, error) {
	var tp models.ThirdParty
	var identityRef, credentialRef sql.NullString
	var status string
	if err := row.Scan(&tp.ID, &tp.CompanyName, &tp.ContactEmail, &tp.ContainerName,
		&tp.AutomationEnabled, &identityRef, &credentialRef, &status,
		&tp.CreatedAt, &tp.UpdatedAt); err != nil {
		return nil, err
	}
	tp.ExternalIdentityRef = identityRef.String
	tp.CredentialRef = credentialRef.String
	tp.Status = models.Status(status)
	return &tp, nil
}

func scanThirdParties(rows *sql.Rows) ([]*models.ThirdParty, error) {
	var out []*models.ThirdParty
	for rows.Next() {
		tp, err := scanThirdParty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
