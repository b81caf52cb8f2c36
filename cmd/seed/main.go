package main

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/hackgods/provider-booking/internal/appointment"
	"github.com/hackgods/provider-booking/internal/clock"
	"github.com/hackgods/provider-booking/internal/config"
	"github.com/hackgods/provider-booking/internal/db"
	"github.com/hackgods/provider-booking/internal/lock"
	"github.com/hackgods/provider-booking/internal/logger"
	"github.com/hackgods/provider-booking/internal/provider"
)

const extraProviders = 8

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.Init("seed", "", "info")
		log.Fatal().Err(err).Msg("config load error")
	}

	log := logger.Init("seed", cfg.Env, cfg.LogLevel)
	log.Info().Msg("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if _, err := db.NewMigrator(pool).Up(ctx); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	providerRepo := provider.NewPgRepository(pool)
	count, err := providerRepo.CountProviders(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("count providers")
	}
	if count > 0 {
		log.Info().Int("providers", count).Msg("database already seeded, skipping")
		return
	}

	providers := provider.NewService(providerRepo, log)
	bookings := appointment.NewService(
		appointment.NewPgRepository(pool),
		providers,
		lock.NewKeyedMutex(),
		clock.System(),
		log,
		nil,
	)

	if err := seed(ctx, providers, bookings, log); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}

	log.Info().Msg("seed complete")
}

func seed(ctx context.Context, providers *provider.Service, bookings *appointment.Service, log zerolog.Logger) error {
	sarah, err := providers.CreateProvider(ctx, "Dr. Sarah Johnson", "America/New_York")
	if err != nil {
		return err
	}
	if _, err := providers.CreateProvider(ctx, "Dr. Michael Chen", "America/Los_Angeles"); err != nil {
		return err
	}

	zones := []string{"UTC", "Europe/London", "Europe/Berlin", "Asia/Tokyo", "America/Chicago"}
	for i := 0; i < extraProviders; i++ {
		name := "Dr. " + gofakeit.FirstName() + " " + gofakeit.LastName()
		if _, err := providers.CreateProvider(ctx, name, zones[gofakeit.Number(0, len(zones)-1)]); err != nil {
			return err
		}
	}
	log.Info().Int("providers", extraProviders+2).Msg("providers seeded")

	tomorrow := appointment.StartOfDayUTC(bookings.Now()).AddDate(0, 0, 1)
	sample := []struct {
		customer string
		start    time.Time
	}{
		{"John Doe", tomorrow.Add(9 * time.Hour)},
		{"Jane Smith", tomorrow.Add(10 * time.Hour)},
	}

	for _, s := range sample {
		appt, err := bookings.BookAppointment(ctx, sarah.ID, s.customer, s.start, s.start.Add(30*time.Minute))
		if err != nil {
			return err
		}
		log.Info().
			Str("appointment_id", appt.ID.String()).
			Str("customer", appt.CustomerName).
			Time("start_utc", appt.StartUTC).
			Msg("sample appointment booked")
	}

	return nil
}
