package provider

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/apperr"
)

var (
	ErrProviderNotFound = apperr.NotFound("Provider not found")
	ErrNameRequired     = apperr.BadRequest("Provider name is required")
)

// Repository is the provider directory storage. GetProviderByID returns
// ErrProviderNotFound when no provider has the id.
type Repository interface {
	GetProviderByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	ListActiveProviders(ctx context.Context) ([]Provider, error)
	CountProviders(ctx context.Context) (int, error)
	CreateProvider(ctx context.Context, p *Provider) error
	SetProviderActive(ctx context.Context, id uuid.UUID, active bool) (*Provider, error)
}
