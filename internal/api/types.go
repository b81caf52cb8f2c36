package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/appointment"
	"github.com/hackgods/provider-booking/internal/provider"
)

type BookAppointmentRequest struct {
	ProviderID   string    `json:"provider_id"`
	CustomerName string    `json:"customer_name"`
	StartUTC     time.Time `json:"start_utc"`
	EndUTC       time.Time `json:"end_utc"`
}

type AppointmentResponse struct {
	ID           uuid.UUID `json:"id"`
	ProviderID   uuid.UUID `json:"provider_id"`
	CustomerName string    `json:"customer_name"`
	StartUTC     time.Time `json:"start_utc"`
	EndUTC       time.Time `json:"end_utc"`
	Status       string    `json:"status"`
	CreatedUTC   time.Time `json:"created_utc"`
}

type CreateProviderRequest struct {
	Name     string `json:"name"`
	TimeZone string `json:"time_zone"`
}

type SetProviderActiveRequest struct {
	Active *bool `json:"active"`
}

type ProviderResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	TimeZone string    `json:"time_zone"`
	IsActive bool      `json:"is_active"`
}

type ServerTimeResponse struct {
	UTCNow time.Time `json:"utc_now"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		ProviderID:   a.ProviderID,
		CustomerName: a.CustomerName,
		StartUTC:     a.StartUTC,
		EndUTC:       a.EndUTC,
		Status:       string(a.Status),
		CreatedUTC:   a.CreatedAt,
	}
}

func toProviderResponse(p *provider.Provider) ProviderResponse {
	return ProviderResponse{
		ID:       p.ID,
		Name:     p.Name,
		TimeZone: p.TimeZone,
		IsActive: p.IsActive,
	}
}
