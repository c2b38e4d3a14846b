package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hagegesam/fiverr-share-earn/internal/models"
	"github.com/hagegesam/fiverr-share-earn/internal/repository"
)

// ClickService записывает переходы по ссылкам. Запись синхронная: клик
// должен быть зафиксирован до того, как клиенту уйдёт редирект.
type ClickService interface {
	Record(ctx context.Context, linkID uuid.UUID) (*models.Click, error)
}

type clickService struct {
	clickRepo repository.ClickRepository
}

func NewClickService(clickRepo repository.ClickRepository) ClickService {
	return &clickService{clickRepo: clickRepo}
}

// Record вставляет клик для существующей ссылки. Вызывающий уже проверил,
// что ссылка есть; повторной валидации нет — целостность держит внешний ключ.
func (s *clickService) Record(ctx context.Context, linkID uuid.UUID) (*models.Click, error) {
	click := &models.Click{
		ID:        uuid.New(),
		LinkID:    linkID,
		ClickedAt: time.Now().UTC(),
	}

	if err := s.clickRepo.Record(ctx, click); err != nil {
		return nil, err
	}

	return click, nil
}
