package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign groups content items under a named marketing push. The
// dashboard uses campaigns only as a filter and grouping label; it
// never creates or mutates them.
type Campaign struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}
