package appointment

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/provider-booking/internal/clock"
	"github.com/hackgods/provider-booking/internal/db"
	"github.com/hackgods/provider-booking/internal/provider"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := db.ConnectPostgres(ctx, dsn, db.PoolOptions{MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = db.NewMigrator(pool).Up(ctx)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE event_logs, appointments, providers`)
	require.NoError(t, err)

	return pool
}

func seedPgProvider(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	p := &provider.Provider{ID: uuid.New(), Name: "Dr. Sarah Johnson", TimeZone: "UTC", IsActive: true}
	require.NoError(t, provider.NewPgRepository(pool).CreateProvider(context.Background(), p))
	return p.ID
}

func newAppt(providerID uuid.UUID, start, end string) *Appointment {
	return &Appointment{
		ID:           uuid.New(),
		ProviderID:   providerID,
		CustomerName: "Alice",
		StartUTC:     at(start),
		EndUTC:       at(end),
		Status:       StatusBooked,
		CreatedAt:    now,
	}
}

func TestPgRepository_ExclusionConstraint(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewPgRepository(pool)
	providerID := seedPgProvider(t, pool)

	first := newAppt(providerID, "2024-01-02T09:00:00Z", "2024-01-02T09:30:00Z")
	require.NoError(t, repo.InsertAppointment(ctx, first))

	err := repo.InsertAppointment(ctx, newAppt(providerID, "2024-01-02T09:15:00Z", "2024-01-02T09:45:00Z"))
	assert.ErrorIs(t, err, ErrOverlap)

	require.NoError(t, repo.InsertAppointment(ctx, newAppt(providerID, "2024-01-02T09:30:00Z", "2024-01-02T10:00:00Z")),
		"touching windows do not overlap")

	_, err = repo.UpdateAppointmentStatus(ctx, first.ID, StatusBooked, StatusCancelled)
	require.NoError(t, err)
	require.NoError(t, repo.InsertAppointment(ctx, newAppt(providerID, "2024-01-02T09:00:00Z", "2024-01-02T09:30:00Z")),
		"cancelled appointments do not block")
}

func TestPgRepository_HasOverlap(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewPgRepository(pool)
	providerID := seedPgProvider(t, pool)

	a := newAppt(providerID, "2024-01-02T09:00:00Z", "2024-01-02T09:30:00Z")
	require.NoError(t, repo.InsertAppointment(ctx, a))

	overlap, err := repo.HasOverlap(ctx, providerID, at("2024-01-02T09:29:00Z"), at("2024-01-02T10:00:00Z"), nil)
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = repo.HasOverlap(ctx, providerID, at("2024-01-02T09:30:00Z"), at("2024-01-02T10:00:00Z"), nil)
	require.NoError(t, err)
	assert.False(t, overlap)

	overlap, err = repo.HasOverlap(ctx, providerID, at("2024-01-02T09:00:00Z"), at("2024-01-02T09:30:00Z"), &a.ID)
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestPgRepository_ScheduleAndStatus(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewPgRepository(pool)
	providerID := seedPgProvider(t, pool)

	late := newAppt(providerID, "2024-01-02T23:30:00Z", "2024-01-03T00:15:00Z")
	early := newAppt(providerID, "2024-01-02T00:00:00Z", "2024-01-02T00:30:00Z")
	next := newAppt(providerID, "2024-01-03T08:00:00Z", "2024-01-03T08:30:00Z")
	for _, a := range []*Appointment{late, early, next} {
		require.NoError(t, repo.InsertAppointment(ctx, a))
	}

	updated, err := repo.UpdateAppointmentStatus(ctx, early.ID, StatusBooked, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)

	_, err = repo.UpdateAppointmentStatus(ctx, early.ID, StatusBooked, StatusCancelled)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	sched, err := repo.ScheduleForDay(ctx, providerID, at("2024-01-02T00:00:00Z"))
	require.NoError(t, err)
	require.Len(t, sched, 2)
	assert.Equal(t, early.ID, sched[0].ID)
	assert.Equal(t, late.ID, sched[1].ID)
	assert.Equal(t, time.UTC, sched[0].StartUTC.Location())

	_, err = repo.GetAppointmentByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestPgService_ConcurrentBookingsWithoutLock(t *testing.T) {
	pool := newTestPool(t)
	providerID := seedPgProvider(t, pool)

	repo := NewPgRepository(pool)
	lookup := provider.NewService(provider.NewPgRepository(pool), zerolog.Nop())
	svc := NewService(repo, lookup, noLock{}, clock.Fixed(now), zerolog.Nop(), nil)

	successes, conflicts := runConcurrentBookings(t, svc, providerID, 8)
	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, conflicts)
	assert.Equal(t, 1, bookedInWindow(t, repo, providerID))
}
