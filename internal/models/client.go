package models

import (
	"time"

	"github.com/google/uuid"
)

// Role describes what a user may do within a client account.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Client is the tenant boundary. All campaigns, content and metrics
// belong to exactly one client, and every query is scoped by client ID.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientUser associates an authenticated user with a client account.
// A regular dashboard user has exactly one member association; admin
// users may be associated with several clients.
type ClientUser struct {
	UserID   uuid.UUID `json:"user_id"`
	ClientID uuid.UUID `json:"client_id"`
	Role     Role      `json:"role"`
}
