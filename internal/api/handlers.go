package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/provider-booking/internal/appointment"
	"github.com/hackgods/provider-booking/internal/provider"
)

// BookingService is the engine surface the HTTP layer depends on.
type BookingService interface {
	BookAppointment(ctx context.Context, providerID uuid.UUID, customerName string, startUTC, endUTC time.Time) (*appointment.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	GetProviderSchedule(ctx context.Context, providerID uuid.UUID, date time.Time) ([]appointment.Appointment, error)
	Now() time.Time
}

type ProviderDirectory interface {
	CreateProvider(ctx context.Context, name, timeZone string) (*provider.Provider, error)
	ListProviders(ctx context.Context) ([]provider.Provider, error)
	SetProviderActive(ctx context.Context, id uuid.UUID, active bool) (*provider.Provider, error)
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func parseIDParam(w http.ResponseWriter, r *http.Request, param, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, code, param+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func bookAppointmentHandler(svc BookingService, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		providerID, err := uuid.Parse(req.ProviderID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "provider_id must be a valid UUID")
			return
		}

		appt, err := svc.BookAppointment(r.Context(), providerID, req.CustomerName, req.StartUTC, req.EndUTC)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		w.Header().Set("Location", "/api/appointments/"+appt.ID.String())
		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc BookingService, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc BookingService, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		if err := svc.CancelAppointment(r.Context(), id); err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func providerScheduleHandler(svc BookingService, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := parseIDParam(w, r, "providerID", "invalid_provider_id")
		if !ok {
			return
		}

		date, ok := parseDate(r.URL.Query().Get("date"))
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid date format. Use YYYY-MM-DD")
			return
		}

		appts, err := svc.GetProviderSchedule(r.Context(), providerID, date)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		resp := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			resp = append(resp, toAppointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func parseDate(raw string) (time.Time, bool) {
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d, true
	}
	return time.Time{}, false
}

func serverTimeHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ServerTimeResponse{UTCNow: svc.Now()})
	}
}

func createProviderHandler(dir ProviderDirectory, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProviderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := dir.CreateProvider(r.Context(), req.Name, req.TimeZone)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		w.Header().Set("Location", "/api/providers/"+p.ID.String())
		writeJSON(w, http.StatusCreated, toProviderResponse(p))
	}
}

func listProvidersHandler(dir ProviderDirectory, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers, err := dir.ListProviders(r.Context())
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		resp := make([]ProviderResponse, 0, len(providers))
		for i := range providers {
			resp = append(resp, toProviderResponse(&providers[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func setProviderActiveHandler(dir ProviderDirectory, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r, "providerID", "invalid_provider_id")
		if !ok {
			return
		}

		var req SetProviderActiveRequest
		if err := decodeJSON(w, r, &req); err != nil || req.Active == nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", `body must be {"active": true|false}`)
			return
		}

		p, err := dir.SetProviderActive(r.Context(), id, *req.Active)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toProviderResponse(p))
	}
}
