package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sightline-analytics/sightline/internal/models"
)

// PostgresClientRepo implements ClientRepo using PostgreSQL.
type PostgresClientRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresClientRepo(pool *pgxpool.Pool) *PostgresClientRepo {
	return &PostgresClientRepo{pool: pool}
}

func (r *PostgresClientRepo) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var c models.Client
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at
		FROM clients WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &c, nil
}

func (r *PostgresClientRepo) AssociationsForUser(ctx context.Context, userID uuid.UUID) ([]models.ClientUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, client_id, role
		FROM client_users WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list associations: %w", err)
	}
	defer rows.Close()

	res := []models.ClientUser{}
	for rows.Next() {
		var cu models.ClientUser
		if err := rows.Scan(&cu.UserID, &cu.ClientID, &cu.Role); err != nil {
			return nil, err
		}
		res = append(res, cu)
	}
	return res, rows.Err()
}

// PostgresCampaignRepo implements CampaignRepo using PostgreSQL.
type PostgresCampaignRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCampaignRepo(pool *pgxpool.Pool) *PostgresCampaignRepo {
	return &PostgresCampaignRepo{pool: pool}
}

func (r *PostgresCampaignRepo) ListCampaigns(ctx context.Context, clientID uuid.UUID) ([]models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, name, start_date, end_date
		FROM campaigns WHERE client_id = $1
		ORDER BY start_date DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	res := []models.Campaign{}
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Name, &c.StartDate, &c.EndDate); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// PostgresContentRepo implements ContentRepo using PostgreSQL.
type PostgresContentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresContentRepo(pool *pgxpool.Pool) *PostgresContentRepo {
	return &PostgresContentRepo{pool: pool}
}

func (r *PostgresContentRepo) ListContent(ctx context.Context, f ContentFilter) ([]models.ContentItem, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT id, client_id, content_name, platform, content_type, content_url, post_date, campaign_id
		FROM content_items WHERE client_id = $1`)
	args := []any{f.ClientID}

	if f.Platform != "" {
		args = append(args, f.Platform)
		fmt.Fprintf(&b, " AND platform = $%d", len(args))
	}
	if f.CampaignID != nil {
		args = append(args, *f.CampaignID)
		fmt.Fprintf(&b, " AND campaign_id = $%d", len(args))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		fmt.Fprintf(&b, " AND post_date >= $%d", len(args))
	}
	if f.EndDate != nil {
		// Same end-of-day widening as the in-memory repo, so a
		// post_date with a time component lands inside the inclusive
		// range on both backends.
		args = append(args, endOfDay(*f.EndDate))
		fmt.Fprintf(&b, " AND post_date <= $%d", len(args))
	}

	args = append(args, f.EffectiveLimit(), f.Offset())
	fmt.Fprintf(&b, " ORDER BY post_date DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	res := []models.ContentItem{}
	for rows.Next() {
		var item models.ContentItem
		if err := rows.Scan(&item.ID, &item.ClientID, &item.Name, &item.Platform,
			&item.ContentType, &item.URL, &item.PostDate, &item.CampaignID); err != nil {
			return nil, err
		}
		res = append(res, item)
	}
	return res, rows.Err()
}

// PostgresMetricRepo implements MetricRepo using PostgreSQL.
type PostgresMetricRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMetricRepo(pool *pgxpool.Pool) *PostgresMetricRepo {
	return &PostgresMetricRepo{pool: pool}
}

func (r *PostgresMetricRepo) MetricsForContent(ctx context.Context, ids []uuid.UUID) ([]models.Metric, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT content_id, metric_name, metric_value
		FROM metrics WHERE content_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	defer rows.Close()

	res := []models.Metric{}
	for rows.Next() {
		var m models.Metric
		if err := rows.Scan(&m.ContentID, &m.Name, &m.Value); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
