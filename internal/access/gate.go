package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sightline-analytics/sightline/internal/models"
	"github.com/sightline-analytics/sightline/internal/storage"
)

// Access outcomes. NotConfigured is a legitimate terminal state for a
// freshly provisioned user, not a failure.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("no access to this client data")
	ErrNotConfigured   = errors.New("user has no client account configured")
)

// Gate resolves identities to client accounts and enforces tenant
// isolation. Authorization is re-checked on every data call; nothing
// here is cached beyond the request.
type Gate struct {
	clients storage.ClientRepo
}

// NewGate creates a gate over the client repository.
func NewGate(clients storage.ClientRepo) *Gate {
	return &Gate{clients: clients}
}

// ResolveClient returns the client account a user's dashboard is
// scoped to. A user with no association at all gets ErrNotConfigured.
func (g *Gate) ResolveClient(ctx context.Context, userID uuid.UUID) (*models.Client, error) {
	assocs, err := g.clients.AssociationsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve associations: %w", err)
	}
	if len(assocs) == 0 {
		return nil, ErrNotConfigured
	}

	client, err := g.clients.GetClient(ctx, assocs[0].ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, ErrNotConfigured
	}
	return client, nil
}

// Authorize verifies that the user holds an association with the
// given client. Called on every data request.
func (g *Gate) Authorize(ctx context.Context, userID, clientID uuid.UUID) error {
	assocs, err := g.clients.AssociationsForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve associations: %w", err)
	}
	for _, a := range assocs {
		if a.ClientID == clientID {
			return nil
		}
	}
	return ErrForbidden
}

// AdminClients returns every client the user administers. A user with
// associations but no admin role gets ErrForbidden; a user with no
// associations gets ErrNotConfigured.
func (g *Gate) AdminClients(ctx context.Context, userID uuid.UUID) ([]models.Client, error) {
	assocs, err := g.clients.AssociationsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve associations: %w", err)
	}
	if len(assocs) == 0 {
		return nil, ErrNotConfigured
	}

	res := []models.Client{}
	for _, a := range assocs {
		if a.Role != models.RoleAdmin {
			continue
		}
		client, err := g.clients.GetClient(ctx, a.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to load client: %w", err)
		}
		if client != nil {
			res = append(res, *client)
		}
	}
	if len(res) == 0 {
		return nil, ErrForbidden
	}
	return res, nil
}
