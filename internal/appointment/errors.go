package appointment

import (
	"github.com/hackgods/provider-booking/internal/apperr"
	"github.com/hackgods/provider-booking/internal/provider"
)

// Failure messages are part of the public contract; clients match on them.
var (
	ErrCustomerNameRequired = apperr.BadRequest("Customer name is required")
	ErrEndNotAfterStart     = apperr.BadRequest("End time must be after start time")
	ErrInvalidDuration      = apperr.BadRequest("Appointment duration must be between 15 and 120 minutes")
	ErrProviderNotFound     = provider.ErrProviderNotFound
	ErrProviderInactive     = apperr.BadRequest("Provider is not active")
	ErrInsufficientLeadTime = apperr.BadRequest("Appointment must be at least 30 minutes in the future")
	ErrOverlap              = apperr.Conflict("Provider has an overlapping appointment")
	ErrProviderBusy         = apperr.Conflict("Provider is busy, please retry")

	ErrAppointmentNotFound = apperr.NotFound("Appointment not found")
	ErrAlreadyCancelled    = apperr.Conflict("Appointment is already cancelled")
)
