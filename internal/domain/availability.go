package domain

import (
	"time"

	"github.com/spaflow/booking-engine/pkg/types"
)

// DateAvailabilitySummary производная сводка доступности на дату (не хранится в БД)
type DateAvailabilitySummary struct {
	Date            time.Time
	TotalSlots      int
	BookedSlots     int
	AvailableSlots  int // max(0, TotalSlots - BookedSlots)
	HasAvailability bool
}

// TimeSlot производная доступность конкретного времени начала для услуги
type TimeSlot struct {
	StartTime           types.TimeString
	DurationMinutes     int
	AvailableStaffCount int
	AvailableRoomCount  int
	Available           bool // AvailableStaffCount > 0 && AvailableRoomCount > 0

	// Suggested pair: детерминированно наименьшие ID среди подходящих кандидатов
	SuggestedStaffID *int64
	SuggestedRoomID  *int64
}

// Allocation выбранная пара (кабинет, мастер) для бронирования
type Allocation struct {
	RoomID  int64
	StaffID int64
}
