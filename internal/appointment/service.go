package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/provider-booking/internal/apperr"
	"github.com/hackgods/provider-booking/internal/clock"
	"github.com/hackgods/provider-booking/internal/lock"
	"github.com/hackgods/provider-booking/internal/metrics"
)

const (
	MinDuration = 15 * time.Minute
	MaxDuration = 120 * time.Minute
	MinLeadTime = 30 * time.Minute
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

type Service struct {
	repo      Repository
	providers ProviderLookup
	locker    lock.Locker
	clock     clock.Clock
	log       zerolog.Logger
	metrics   *metrics.Collector
}

func NewService(
	repo Repository,
	providers ProviderLookup,
	locker lock.Locker,
	clk clock.Clock,
	log zerolog.Logger,
	m *metrics.Collector,
) *Service {
	return &Service{
		repo:      repo,
		providers: providers,
		locker:    locker,
		clock:     clk,
		log:       log.With().Str("component", "booking").Logger(),
		metrics:   m,
	}
}

func providerLockKey(providerID uuid.UUID) string {
	return "lock:provider:" + providerID.String()
}

// BookAppointment validates a booking request and persists it. Checks run in
// a fixed order and stop at the first failure; nothing is written unless all
// of them pass. The overlap check and the insert run inside the provider's
// lock so that concurrent requests for the same provider cannot both win.
func (s *Service) BookAppointment(ctx context.Context, providerID uuid.UUID, customerName string, startUTC, endUTC time.Time) (appt *Appointment, err error) {
	defer func() { s.finish("book", err) }()

	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, ErrCustomerNameRequired
	}

	start, end := startUTC.UTC(), endUTC.UTC()
	if !end.After(start) {
		return nil, ErrEndNotAfterStart
	}

	if d := end.Sub(start); d < MinDuration || d > MaxDuration {
		return nil, ErrInvalidDuration
	}

	p, err := s.providers.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if !p.IsActive {
		return nil, ErrProviderInactive
	}

	if start.Before(s.clock.Now().Add(MinLeadTime)) {
		return nil, ErrInsufficientLeadTime
	}

	var created *Appointment

	err = s.locker.WithLock(ctx, providerLockKey(providerID), func(lockCtx context.Context) error {
		overlap, err := s.repo.HasOverlap(lockCtx, providerID, start, end, nil)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if overlap {
			return ErrOverlap
		}

		a := &Appointment{
			ID:           uuid.New(),
			ProviderID:   providerID,
			CustomerName: name,
			StartUTC:     start,
			EndUTC:       end,
			Status:       StatusBooked,
			CreatedAt:    s.clock.Now(),
		}

		// The store rejects an overlap that slipped past the lock (expired
		// TTL, a second deployment) with ErrOverlap.
		if err := s.repo.InsertAppointment(lockCtx, a); err != nil {
			if errors.Is(err, ErrOverlap) {
				return ErrOverlap
			}
			return fmt.Errorf("insert appointment: %w", err)
		}

		created = a
		return nil
	})

	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrProviderBusy
		}
		return nil, err
	}

	s.logEvent(ctx, created.ID, EventAppointmentBooked, map[string]any{
		"provider_id": providerID.String(),
		"start_utc":   created.StartUTC,
		"end_utc":     created.EndUTC,
	})
	s.log.Info().
		Str("appointment_id", created.ID.String()).
		Str("provider_id", providerID.String()).
		Time("start_utc", created.StartUTC).
		Time("end_utc", created.EndUTC).
		Msg("appointment booked")

	return created, nil
}

// CancelAppointment moves a booked appointment to cancelled. Cancelling a
// cancelled appointment is a conflict, not a no-op. The status update is
// conditional on the appointment still being booked, so two concurrent
// cancellations cannot both succeed.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.finish("cancel", err) }()

	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("load appointment: %w", err)
	}

	if !appt.Status.CanTransitionTo(StatusCancelled) {
		return ErrAlreadyCancelled
	}

	if _, err := s.repo.UpdateAppointmentStatus(ctx, id, StatusBooked, StatusCancelled); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Rows are never deleted while the service runs, so a miss here
			// means another cancellation won the race.
			return ErrAlreadyCancelled
		}
		return fmt.Errorf("cancel appointment: %w", err)
	}

	s.logEvent(ctx, id, EventAppointmentCancelled, map[string]any{
		"provider_id": appt.ProviderID.String(),
	})
	s.log.Info().Str("appointment_id", id.String()).Msg("appointment cancelled")

	return nil
}

// GetProviderSchedule returns the provider's appointments of any status that
// start on the UTC calendar day of date, ordered by start. An unknown
// provider yields an empty schedule.
func (s *Service) GetProviderSchedule(ctx context.Context, providerID uuid.UUID, date time.Time) ([]Appointment, error) {
	appointments, err := s.repo.ScheduleForDay(ctx, providerID, StartOfDayUTC(date))
	if err != nil {
		return nil, fmt.Errorf("provider schedule: %w", err)
	}
	return appointments, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// Now exposes the engine clock.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

func (s *Service) finish(op string, err error) {
	outcome := "success"
	if err != nil {
		if kind, ok := apperr.KindOf(err); ok {
			outcome = string(kind)
		} else {
			outcome = "error"
		}
	}
	s.metrics.ObserveOperation(op, outcome)

	switch outcome {
	case "success":
	case string(apperr.KindConflict):
		s.log.Warn().Str("op", op).Str("reason", err.Error()).Msg("request rejected")
	case "error":
		s.log.Error().Err(err).Str("op", op).Msg("storage failure")
	default:
		s.log.Debug().Str("op", op).Str("reason", err.Error()).Msg("request rejected")
	}
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("event", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("insert event log")
	}
}
