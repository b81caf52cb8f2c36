package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const providerCols = `id, name, time_zone, is_active, created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.TimeZone,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *PgRepository) GetProviderByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+providerCols+`
		FROM providers
		WHERE id = $1
	`, id)
	return scanProvider(row)
}

func (r *PgRepository) ListActiveProviders(ctx context.Context) ([]Provider, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+providerCols+`
		FROM providers
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CountProviders(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM providers`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PgRepository) CreateProvider(ctx context.Context, p *Provider) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO providers (id, name, time_zone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.TimeZone, p.IsActive)

	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

func (r *PgRepository) SetProviderActive(ctx context.Context, id uuid.UUID, active bool) (*Provider, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE providers
		SET is_active = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+providerCols+`
	`, id, active)
	return scanProvider(row)
}
