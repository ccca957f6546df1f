package domain

import (
	"time"

	"github.com/spaflow/booking-engine/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// Booking represents a confirmed spa appointment occupying one staff member and one room
type Booking struct {
	ID          int64
	CustomerID  int64
	ServiceID   int64
	StaffID     int64
	RoomID      int64
	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	Status      BookingStatus

	// Denormalized data for history
	ServiceName     string
	TotalPrice      float64 // snapshot of the service price at creation time
	SpecialRequests *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies its room and staff member
// Cancelled and no-show bookings free their interval
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled && b.Status != StatusNoShow
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the booking date/time can still be changed
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsTerminal returns true if no further status transition is allowed
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled || b.Status == StatusNoShow
}

// CanTransitionTo проверяет допустимость перехода статуса
// Машина состояний: pending → confirmed → in_progress → completed (только вперед);
// pending|confirmed → cancelled; confirmed → no_show
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusInProgress || next == StatusCancelled || next == StatusNoShow
	case StatusInProgress:
		return next == StatusCompleted
	default:
		// completed, cancelled, no_show - терминальные
		return false
	}
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	StartDate        *time.Time     // Начало периода (опционально)
	EndDate          *time.Time     // Конец периода (опционально)
	StaffID          *int64         // Фильтр по мастеру (опционально)
	RoomID           *int64         // Фильтр по кабинету (опционально)
	Status           *BookingStatus // Фильтр по статусу (опционально)
	ExcludeBookingID *int64         // Исключить бронирование по ID (для проверок при переносе)
	IncludeInactive  bool           // Включать ли отмененные и no-show
}
