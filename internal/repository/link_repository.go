package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hagegesam/fiverr-share-earn/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrLinkNotFound = errors.New("link not found")
	ErrCodeExists   = errors.New("short code already exists")
	ErrURLExists    = errors.New("target url already exists")
)

type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByShortCode(ctx context.Context, code string) (*models.Link, error)
	GetByTargetURL(ctx context.Context, targetURL string) (*models.Link, error)
	List(ctx context.Context, offset, limit int) ([]models.Link, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, code string) error
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (id, short_code, target_url, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		link.ID,
		link.ShortCode,
		link.TargetURL,
		link.CreatedAt,
	)

	if err != nil {
		// Нарушение уникальности — ожидаемый исход под гонкой, различаем
		// по имени ограничения: коллизия кода ретраится, дубликат URL — нет
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "links_target_url_key":
				return ErrURLExists
			default:
				return ErrCodeExists
			}
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByShortCode(ctx context.Context, code string) (*models.Link, error) {
	query := `
		SELECT id, short_code, target_url, created_at
		FROM links
		WHERE short_code = $1
	`

	link := &models.Link{}
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&link.ID,
		&link.ShortCode,
		&link.TargetURL,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

func (r *linkRepository) GetByTargetURL(ctx context.Context, targetURL string) (*models.Link, error) {
	query := `
		SELECT id, short_code, target_url, created_at
		FROM links
		WHERE target_url = $1
	`

	link := &models.Link{}
	err := r.db.Pool.QueryRow(ctx, query, targetURL).Scan(
		&link.ID,
		&link.ShortCode,
		&link.TargetURL,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by target url: %w", err)
	}

	return link, nil
}

// List возвращает страницу ссылок, новые сначала
func (r *linkRepository) List(ctx context.Context, offset, limit int) ([]models.Link, error) {
	query := `
		SELECT id, short_code, target_url, created_at
		FROM links
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		var link models.Link
		if err := rows.Scan(&link.ID, &link.ShortCode, &link.TargetURL, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

func (r *linkRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM links`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

func (r *linkRepository) Delete(ctx context.Context, code string) error {
	// Клики удаляются каскадом (ON DELETE CASCADE)
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM links WHERE short_code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}
