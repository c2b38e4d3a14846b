package models

import (
	"time"

	"github.com/google/uuid"
)

type Click struct {
	ID        uuid.UUID `json:"id"`
	LinkID    uuid.UUID `json:"link_id"`
	ClickedAt time.Time `json:"clicked_at"`
}

// MonthlyClicks количество кликов за один календарный месяц (UTC, формат YYYY-MM)
type MonthlyClicks struct {
	Month  string `json:"month"`
	Clicks int64  `json:"clicks"`
}
