package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all persisted entities. Rows are never
// physically removed; IsDeleted only ever moves false -> true.
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	IsDeleted bool      `json:"is_deleted" db:"is_deleted"`
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
