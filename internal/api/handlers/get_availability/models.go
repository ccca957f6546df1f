package get_availability

import (
	"github.com/spaflow/booking-engine/internal/domain"
	getDateAvailability "github.com/spaflow/booking-engine/internal/usecase/get_date_availability"
	getTimeSlots "github.com/spaflow/booking-engine/internal/usecase/get_time_slots"
)

// SlotResponse доступность одного времени начала
type SlotResponse struct {
	StartTime           string `json:"startTime"` // "10:00"
	DurationMinutes     int    `json:"durationMinutes"`
	Available           bool   `json:"available"`
	AvailableStaffCount int    `json:"availableStaffCount"`
	AvailableRoomCount  int    `json:"availableRoomCount"`
	SuggestedStaffID    *int64 `json:"suggestedStaffId,omitempty"`
	SuggestedRoomID     *int64 `json:"suggestedRoomId,omitempty"`
}

// TimeSlotsResponse ответ со слотами на дату
type TimeSlotsResponse struct {
	Date  string         `json:"date"` // "2026-09-15"
	Slots []SlotResponse `json:"slots"`
}

// SummaryResponse сводка доступности одной даты
type SummaryResponse struct {
	Date            string `json:"date"`
	TotalSlots      int    `json:"totalSlots"`
	BookedSlots     int    `json:"bookedSlots"`
	AvailableSlots  int    `json:"availableSlots"`
	HasAvailability bool   `json:"hasAvailability"`
}

// DateAvailabilityResponse ответ со сводками по датам диапазона
type DateAvailabilityResponse struct {
	StartDate string            `json:"startDate"`
	Days      int               `json:"days"`
	Dates     []SummaryResponse `json:"dates"`
}

// FromTimeSlotsResponse конвертирует ответ use case в HTTP response
func FromTimeSlotsResponse(resp *getTimeSlots.Response) *TimeSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime:           s.StartTime.String(),
			DurationMinutes:     s.DurationMinutes,
			Available:           s.Available,
			AvailableStaffCount: s.AvailableStaffCount,
			AvailableRoomCount:  s.AvailableRoomCount,
			SuggestedStaffID:    s.SuggestedStaffID,
			SuggestedRoomID:     s.SuggestedRoomID,
		})
	}

	return &TimeSlotsResponse{
		Date:  resp.Date.Format(domain.DateFormat),
		Slots: slots,
	}
}

// FromDateAvailabilityResponse конвертирует ответ use case в HTTP response
func FromDateAvailabilityResponse(resp *getDateAvailability.Response) *DateAvailabilityResponse {
	dates := make([]SummaryResponse, 0, len(resp.Summaries))
	for _, s := range resp.Summaries {
		dates = append(dates, SummaryResponse{
			Date:            s.Date.Format(domain.DateFormat),
			TotalSlots:      s.TotalSlots,
			BookedSlots:     s.BookedSlots,
			AvailableSlots:  s.AvailableSlots,
			HasAvailability: s.HasAvailability,
		})
	}

	return &DateAvailabilityResponse{
		StartDate: resp.StartDate.Format(domain.DateFormat),
		Days:      resp.Days,
		Dates:     dates,
	}
}
