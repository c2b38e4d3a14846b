package models

import (
	"time"

	"github.com/google/uuid"
)

type Link struct {
	ID        uuid.UUID `json:"id"`
	ShortCode string    `json:"short_code"`
	TargetURL string    `json:"target_url"`
	CreatedAt time.Time `json:"created_at"`
}
