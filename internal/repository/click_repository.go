package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hagegesam/fiverr-share-earn/internal/models"
	"github.com/jackc/pgx/v5"
)

type ClickRepository interface {
	Record(ctx context.Context, click *models.Click) error
	CountByLinkID(ctx context.Context, linkID uuid.UUID) (int64, error)
	MonthlyBreakdown(ctx context.Context, linkID uuid.UUID) ([]models.MonthlyClicks, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

// Record вставляет один клик. Существование ссылки не перепроверяется —
// ссылочную целостность обеспечивает внешний ключ.
func (r *clickRepository) Record(ctx context.Context, click *models.Click) error {
	query := `
		INSERT INTO clicks (id, link_id, clicked_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		click.ID,
		click.LinkID,
		click.ClickedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

// CountByLinkID считает клики напрямую по таблице, без денормализованных
// счётчиков — значение всегда точное
func (r *clickRepository) CountByLinkID(ctx context.Context, linkID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM clicks WHERE link_id = $1`, linkID,
	).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	return count, nil
}

// MonthlyBreakdown группирует клики ссылки по календарному месяцу (UTC),
// месяцы по возрастанию
func (r *clickRepository) MonthlyBreakdown(ctx context.Context, linkID uuid.UUID) ([]models.MonthlyClicks, error) {
	query := `
		SELECT
			to_char(clicked_at AT TIME ZONE 'UTC', 'YYYY-MM') as month,
			COUNT(*) as clicks
		FROM clicks
		WHERE link_id = $1
		GROUP BY month
		ORDER BY month ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, linkID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return []models.MonthlyClicks{}, nil
		}
		return nil, fmt.Errorf("failed to get monthly breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := []models.MonthlyClicks{}
	for rows.Next() {
		var entry models.MonthlyClicks
		if err := rows.Scan(&entry.Month, &entry.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan monthly clicks: %w", err)
		}
		breakdown = append(breakdown, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly breakdown: %w", err)
	}

	return breakdown, nil
}
