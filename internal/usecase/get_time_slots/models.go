package get_time_slots

import (
	"time"

	"github.com/spaflow/booking-engine/pkg/types"
)

// Request модель запроса доступных слотов на дату
type Request struct {
	Date      time.Time // дата, на которую считаются слоты
	ServiceID *int64    // услуга (опционально; без нее слоты считаются на длительность по умолчанию)
	StaffID   *int64    // ограничить расчет одним мастером (опционально)
	RoomID    *int64    // ограничить расчет одним кабинетом (опционально)
}

// Slot доступность одного времени начала
type Slot struct {
	StartTime           types.TimeString
	DurationMinutes     int
	Available           bool
	AvailableStaffCount int
	AvailableRoomCount  int
	SuggestedStaffID    *int64
	SuggestedRoomID     *int64
}

// Response модель ответа со слотами на дату
type Response struct {
	Date  time.Time
	Slots []Slot
}
