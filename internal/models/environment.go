package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Environment holds per-user dashboard layout and preferences as free-form JSON objects.
type Environment struct {
	UserID          uuid.UUID       `json:"-"`
	DashboardConfig json.RawMessage `json:"dashboardConfig"`
	Preferences     json.RawMessage `json:"preferences"`
	UpdatedAt       time.Time       `json:"-"`
}
