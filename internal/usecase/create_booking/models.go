package create_booking

import (
	"time"

	"github.com/spaflow/booking-engine/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID      int64            // ID клиента
	ServiceID       int64            // ID услуги
	Date            time.Time        // Дата бронирования (без времени)
	StartTime       types.TimeString // Время начала (например, "10:00")
	PartySize       int              // Количество гостей (0 трактуется как 1)
	SpecialRequests *string          // Пожелания клиента (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	CustomerID      int64
	ServiceID       int64
	StaffID         int64
	RoomID          int64
	BookingDate     time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	Status          string
	ServiceName     string
	TotalPrice      float64 // снапшот цены услуги на момент создания
	SpecialRequests *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
