package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "provider").Logger(),
	}
}

// CreateProvider registers a new active provider. An empty timeZone falls
// back to UTC.
func (s *Service) CreateProvider(ctx context.Context, name, timeZone string) (*Provider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	timeZone = strings.TrimSpace(timeZone)
	if timeZone == "" {
		timeZone = DefaultTimeZone
	}

	p := &Provider{
		ID:       uuid.New(),
		Name:     name,
		TimeZone: timeZone,
		IsActive: true,
	}

	if err := s.repo.CreateProvider(ctx, p); err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	s.log.Info().Str("provider_id", p.ID.String()).Str("name", p.Name).Msg("provider created")
	return p, nil
}

// ListProviders returns the active providers ordered by name.
func (s *Service) ListProviders(ctx context.Context) ([]Provider, error) {
	providers, err := s.repo.ListActiveProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return providers, nil
}

func (s *Service) SetProviderActive(ctx context.Context, id uuid.UUID, active bool) (*Provider, error) {
	p, err := s.repo.SetProviderActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("set provider active: %w", err)
	}

	s.log.Info().Str("provider_id", id.String()).Bool("active", active).Msg("provider active flag changed")
	return p, nil
}

// GetProvider is the lookup capability used by the booking engine.
func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	p, err := s.repo.GetProviderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load provider: %w", err)
	}
	return p, nil
}
