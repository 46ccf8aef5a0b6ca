package api

import (
	"time"

	"github.com/google/uuid"
)

type CreateWindowRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type WindowResponse struct {
	ID        uuid.UUID `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
