package reschedule_booking

import (
	"time"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/service/bookings/models"
	"github.com/spaflow/booking-engine/pkg/types"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	BookingDate string `json:"bookingDate"` // "2026-09-15"
	StartTime   string `json:"startTime"`   // "10:00"
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *RescheduleBookingRequest) ToServiceRequest(actorID int64) (*models.RescheduleBookingRequest, error) {
	date, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &models.RescheduleBookingRequest{
		ActorID:   actorID,
		Date:      date,
		StartTime: startTime,
	}, nil
}
