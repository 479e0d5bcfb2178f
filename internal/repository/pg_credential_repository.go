package repository

import (
	"context"
	"errors"
	"fmt"

	"content-pipeline/internal/database"
	"content-pipeline/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	getCredentialQuery    = `SELECT id, provider, encrypted_key, created_at, updated_at FROM api_keys WHERE provider = $1`
	listCredentialsQuery  = `SELECT id, provider, encrypted_key, created_at, updated_at FROM api_keys ORDER BY provider`
	deleteCredentialQuery = `DELETE FROM api_keys WHERE provider = $1`
	upsertCredentialQuery = `
        INSERT INTO api_keys (provider, encrypted_key)
        VALUES ($1, $2)
        ON CONFLICT (provider) DO UPDATE SET
            encrypted_key = EXCLUDED.encrypted_key,
            updated_at = NOW()
    `
)

type pgCredentialRepository struct {
	logger *zap.Logger
}

// NewPgCredentialRepository создает репозиторий ключей API.
// Ключи в логи не попадают, только имя провайдера.
func NewPgCredentialRepository(logger *zap.Logger) CredentialRepository {
	return &pgCredentialRepository{logger: logger.Named("PgCredentialRepo")}
}

func (r *pgCredentialRepository) GetByProvider(ctx context.Context, querier database.DBTX, provider string) (*models.Credential, error) {
	var cred models.Credential
	if err := pgxscan.Get(ctx, querier, &cred, getCredentialQuery, provider); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get credential", zap.String("provider", provider), zap.Error(err))
		return nil, fmt.Errorf("failed to get credential for %s: %w", provider, err)
	}
	return &cred, nil
}

func (r *pgCredentialRepository) Upsert(ctx context.Context, querier database.DBTX, provider, encryptedKey string) error {
	if _, err := querier.Exec(ctx, upsertCredentialQuery, provider, encryptedKey); err != nil {
		r.logger.Error("Failed to upsert credential", zap.String("provider", provider), zap.Error(err))
		return fmt.Errorf("failed to save credential for %s: %w", provider, err)
	}
	r.logger.Info("Credential saved", zap.String("provider", provider))
	return nil
}

func (r *pgCredentialRepository) Delete(ctx context.Context, querier database.DBTX, provider string) error {
	tag, err := querier.Exec(ctx, deleteCredentialQuery, provider)
	if err != nil {
		r.logger.Error("Failed to delete credential", zap.String("provider", provider), zap.Error(err))
		return fmt.Errorf("failed to delete credential for %s: %w", provider, err)
	}
	r.logger.Info("Credential deleted", zap.String("provider", provider), zap.Int64("rows", tag.RowsAffected()))
	return nil
}

func (r *pgCredentialRepository) List(ctx context.Context, querier database.DBTX) ([]*models.Credential, error) {
	creds := make([]*models.Credential, 0)
	if err := pgxscan.Select(ctx, querier, &creds, listCredentialsQuery); err != nil {
		r.logger.Error("Failed to list credentials", zap.Error(err))
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	return creds, nil
}
