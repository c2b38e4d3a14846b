package service

import (
	"context"
	"fmt"
	"math"

	"github.com/hagegesam/fiverr-share-earn/internal/models"
	"github.com/hagegesam/fiverr-share-earn/internal/repository"
)

// Константы статистики
const (
	// EarningsPerClick фиксированная ставка начисления за один переход
	EarningsPerClick = 0.05

	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// StatsService отдаёт глобальную аналитику по ссылкам
type StatsService interface {
	// GetStats возвращает страницу ссылок с точным числом кликов,
	// начислениями и помесячной разбивкой. Значения вне диапазона
	// приводятся к допустимым (page<1 -> 1, limit вне [1,100] -> 20/100).
	GetStats(ctx context.Context, page, limit int) (*models.StatsResponse, error)
}

type statsService struct {
	linkRepo  repository.LinkRepository
	clickRepo repository.ClickRepository
}

func NewStatsService(linkRepo repository.LinkRepository, clickRepo repository.ClickRepository) StatsService {
	return &statsService{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
	}
}

func (s *statsService) GetStats(ctx context.Context, page, limit int) (*models.StatsResponse, error) {
	// Защитные дефолты: транспорт отвергает такие значения ещё до вызова,
	// но при прямом обращении сервис всё равно ведёт себя корректно
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := (page - 1) * limit

	// Общее число ссылок не зависит от окна пагинации
	totalLinks, err := s.linkRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	links, err := s.linkRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	linkStats := make([]models.LinkStats, 0, len(links))
	for _, link := range links {
		totalClicks, err := s.clickRepo.CountByLinkID(ctx, link.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count clicks for %s: %w", link.ShortCode, err)
		}

		breakdown, err := s.clickRepo.MonthlyBreakdown(ctx, link.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get breakdown for %s: %w", link.ShortCode, err)
		}

		linkStats = append(linkStats, models.LinkStats{
			ShortCode:        link.ShortCode,
			TargetURL:        link.TargetURL,
			TotalClicks:      totalClicks,
			TotalEarnings:    roundEarnings(float64(totalClicks) * EarningsPerClick),
			MonthlyBreakdown: breakdown,
		})
	}

	return &models.StatsResponse{
		Page:       page,
		Limit:      limit,
		TotalLinks: totalLinks,
		Links:      linkStats,
	}, nil
}

// roundEarnings округляет начисления до двух знаков
func roundEarnings(v float64) float64 {
	return math.Round(v*100) / 100
}
