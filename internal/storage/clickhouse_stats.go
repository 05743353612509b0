package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"github.com/sightline-analytics/sightline/internal/models"
)

// ClickHouseStatsStore implements StatsStore against the analytics
// warehouse. Content and metric rows are mirrored into ClickHouse by
// the ingestion pipeline; this store only ever reads.
type ClickHouseStatsStore struct {
	conn driver.Conn
}

func NewClickHouseStatsStore(conn driver.Conn) *ClickHouseStatsStore {
	return &ClickHouseStatsStore{conn: conn}
}

func (s *ClickHouseStatsStore) PlatformCounts(ctx context.Context, clientID uuid.UUID, start, end time.Time) ([]PlatformCount, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT platform, toInt64(count()) AS cnt
		FROM content_items
		WHERE client_id = ? AND post_date >= ? AND post_date <= ?
		GROUP BY platform
		ORDER BY platform
	`, clientID.String(), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count platforms: %w", err)
	}
	defer rows.Close()

	res := []PlatformCount{}
	for rows.Next() {
		var (
			platform string
			count    int64
		)
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, err
		}
		res = append(res, PlatformCount{Platform: models.Platform(platform), Count: int(count)})
	}
	return res, rows.Err()
}

func (s *ClickHouseStatsStore) DailyViews(ctx context.Context, clientID uuid.UUID, start, end time.Time, platform models.Platform) ([]DailyViewsRow, error) {
	query := `
		SELECT c.post_date AS day, sum(toFloat64OrZero(m.metric_value)) AS views
		FROM content_items AS c
		INNER JOIN metrics AS m ON m.content_id = c.id
		WHERE c.client_id = ? AND c.post_date >= ? AND c.post_date <= ?
		  AND m.metric_name = 'views'`
	args := []any{clientID.String(), start, end}

	if platform != "" {
		query += " AND c.platform = ?"
		args = append(args, string(platform))
	}
	query += " GROUP BY day ORDER BY day"

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily views: %w", err)
	}
	defer rows.Close()

	res := []DailyViewsRow{}
	for rows.Next() {
		var row DailyViewsRow
		if err := rows.Scan(&row.Date, &row.Views); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}
