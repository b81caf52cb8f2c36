package provider

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/provider-booking/internal/apperr"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), zerolog.Nop())
}

func TestCreateProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		svc := newTestService()

		p, err := svc.CreateProvider(ctx, "  Dr. Sarah Johnson ", "")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, "Dr. Sarah Johnson", p.Name)
		assert.Equal(t, DefaultTimeZone, p.TimeZone)
		assert.True(t, p.IsActive)
	})

	t.Run("keeps explicit time zone", func(t *testing.T) {
		p, err := newTestService().CreateProvider(ctx, "Dr. Chen", "Europe/Berlin")
		require.NoError(t, err)
		assert.Equal(t, "Europe/Berlin", p.TimeZone)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := newTestService().CreateProvider(ctx, "   ", "UTC")
		assert.ErrorIs(t, err, ErrNameRequired)

		kind, ok := apperr.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperr.KindBadRequest, kind)
		assert.Equal(t, "Provider name is required", err.Error())
	})
}

func TestListProvidersOnlyActiveSortedByName(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	zed, err := svc.CreateProvider(ctx, "Zed", "")
	require.NoError(t, err)
	_, err = svc.CreateProvider(ctx, "Amy", "")
	require.NoError(t, err)
	off, err := svc.CreateProvider(ctx, "Mia", "")
	require.NoError(t, err)

	_, err = svc.SetProviderActive(ctx, off.ID, false)
	require.NoError(t, err)

	list, err := svc.ListProviders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Amy", list[0].Name)
	assert.Equal(t, zed.ID, list[1].ID)
}

func TestSetProviderActiveUnknown(t *testing.T) {
	_, err := newTestService().SetProviderActive(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestGetProvider(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.CreateProvider(ctx, "Dr. Chen", "")
	require.NoError(t, err)

	got, err := svc.GetProvider(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)

	_, err = svc.GetProvider(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrProviderNotFound)
	assert.Equal(t, "Provider not found", err.Error())
}
