package get_availability

import (
	"context"

	getDateAvailability "github.com/spaflow/booking-engine/internal/usecase/get_date_availability"
	getTimeSlots "github.com/spaflow/booking-engine/internal/usecase/get_time_slots"
)

type GetTimeSlotsUseCase interface {
	Execute(ctx context.Context, req *getTimeSlots.Request) (*getTimeSlots.Response, error)
}

type GetDateAvailabilityUseCase interface {
	Execute(ctx context.Context, req *getDateAvailability.Request) (*getDateAvailability.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
