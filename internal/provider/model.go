package provider

import (
	"time"

	"github.com/google/uuid"
)

const DefaultTimeZone = "UTC"

// Provider is a bookable entity. TimeZone is informational only; all
// scheduling math is done on UTC instants.
type Provider struct {
	ID        uuid.UUID
	Name      string
	TimeZone  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
