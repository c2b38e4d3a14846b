package service

import (
	"context"
	"errors"
	"time"
)

// ErrFraudRejected клик не прошёл антифрод-проверку
var ErrFraudRejected = errors.New("клик не прошёл проверку на фрод")

// FraudChecker проверяет переход перед записью клика. Redirect-поток
// дожидается результата, но проверка не должна сериализовать параллельные
// запросы между собой.
type FraudChecker interface {
	Check(ctx context.Context, shortCode string) error
}

// stubFraudChecker заглушка с фиксированной задержкой, всегда пропускает.
// Ожидание кооперативное: спит только горутина текущего запроса.
type stubFraudChecker struct {
	delay time.Duration
}

// NewStubFraudChecker создаёт заглушку антифрода с задержкой ~100ms
func NewStubFraudChecker() FraudChecker {
	return &stubFraudChecker{delay: 100 * time.Millisecond}
}

func (c *stubFraudChecker) Check(ctx context.Context, shortCode string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.delay):
		return nil
	}
}
