package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hagegesam/fiverr-share-earn/internal/models"
	"github.com/hagegesam/fiverr-share-earn/internal/repository"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrInvalidURL         = errors.New("невалидный target_url")
	ErrCodeSpaceExhausted = errors.New("не удалось сгенерировать уникальный короткий код")
)

// Константы сервиса
const (
	codeLength        = 6
	charset           = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxCreateAttempts = 10
	cacheTTL          = 24 * time.Hour
)

// LinkService интерфейс сервиса ссылок
type LinkService interface {
	// CreateOrGetLink возвращает ссылку для target_url, создавая её при
	// необходимости. Второе значение — true, если ссылка создана этим вызовом.
	CreateOrGetLink(ctx context.Context, targetURL string) (*models.Link, bool, error)
	GetLink(ctx context.Context, code string) (*models.Link, error)
	DeleteLink(ctx context.Context, code string) error
}

// linkService реализация сервиса ссылок
type linkService struct {
	linkRepo  repository.LinkRepository
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
}

// NewLinkService создаёт новый экземпляр сервиса
func NewLinkService(linkRepo repository.LinkRepository, cacheRepo repository.CacheRepository, logger *zap.Logger) LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{
		linkRepo:  linkRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
	}
}

// CreateOrGetLink реализует идемпотентное создание: один target_url всегда
// отображается в один и тот же короткий код.
func (s *linkService) CreateOrGetLink(ctx context.Context, targetURL string) (*models.Link, bool, error) {
	targetURL = strings.TrimSpace(targetURL)
	if err := validateTargetURL(targetURL); err != nil {
		return nil, false, err
	}

	// Быстрый путь: URL уже известен. Проверка советующая — под гонкой
	// настоящую защиту даёт уникальный индекс на target_url.
	existing, err := s.linkRepo.GetByTargetURL(ctx, targetURL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrLinkNotFound) {
		return nil, false, err
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		link := &models.Link{
			ID:        uuid.New(),
			ShortCode: generateShortCode(),
			TargetURL: targetURL,
			CreatedAt: time.Now().UTC(),
		}

		err := s.linkRepo.Create(ctx, link)
		if err == nil {
			s.cacheLink(ctx, link)
			return link, true, nil
		}

		if errors.Is(err, repository.ErrCodeExists) {
			// Коллизия кода — пробуем ещё раз с новым кодом
			s.logger.Debug("Коллизия короткого кода, повторная генерация",
				zap.String("short_code", link.ShortCode),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		if errors.Is(err, repository.ErrURLExists) {
			// Гонку за этот URL выиграл параллельный запрос — возвращаем его запись
			winner, getErr := s.linkRepo.GetByTargetURL(ctx, targetURL)
			if getErr != nil {
				return nil, false, getErr
			}
			return winner, false, nil
		}

		return nil, false, err
	}

	// 36^6 кодов, так что сюда мы попадаем только при деградации хранилища
	return nil, false, fmt.Errorf("%w: исчерпаны %d попыток", ErrCodeSpaceExhausted, maxCreateAttempts)
}

// GetLink получает ссылку по короткому коду (сначала из кэша, затем из БД)
func (s *linkService) GetLink(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.cacheRepo.Get(ctx, code)
	if err == nil {
		return link, nil
	}

	link, err = s.linkRepo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}

	s.cacheLink(ctx, link)

	return link, nil
}

// DeleteLink удаляет ссылку вместе с её кликами (каскад в БД)
func (s *linkService) DeleteLink(ctx context.Context, code string) error {
	if err := s.cacheRepo.Delete(ctx, code); err != nil {
		s.logger.Warn("Не удалось удалить ссылку из кэша", zap.String("code", code), zap.Error(err))
	}

	return s.linkRepo.Delete(ctx, code)
}

// cacheLink кэширует запись. Ссылки иммутабельны, поэтому кэш не может
// устареть; ошибка кэша не прерывает запрос.
func (s *linkService) cacheLink(ctx context.Context, link *models.Link) {
	if err := s.cacheRepo.Set(ctx, link.ShortCode, link, cacheTTL); err != nil {
		s.logger.Warn("Не удалось закэшировать ссылку",
			zap.String("short_code", link.ShortCode),
			zap.Error(err),
		)
	}
}

// generateShortCode генерирует код из 6 символов [a-z0-9]. Генератор
// намеренно не криптографический: устойчивость к коллизиям обеспечивает
// retry-цикл поверх уникального индекса, а не сила генератора.
func generateShortCode() string {
	result := make([]byte, codeLength)
	for i := range result {
		result[i] = charset[rand.IntN(len(charset))]
	}
	return string(result)
}

// validateTargetURL проверяет, что URL непустой и начинается с http(s)://
func validateTargetURL(url string) error {
	if url == "" {
		return ErrInvalidURL
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return ErrInvalidURL
	}
	return nil
}
