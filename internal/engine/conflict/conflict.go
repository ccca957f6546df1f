// Package conflict содержит проверку пересечения временных интервалов
// Единственная точка, где определяется, что два бронирования конфликтуют
package conflict

import (
	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/pkg/types"
)

// Resource тип ресурса, за который конкурируют бронирования
type Resource string

const (
	ResourceRoom  Resource = "room"
	ResourceStaff Resource = "staff"
)

// Overlaps проверяет пересечение полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd)
// Бронирование, заканчивающееся ровно в момент начала другого, НЕ конфликтует:
//   - [10:00, 11:00) и [11:00, 12:00) → нет пересечения
//   - [10:00, 11:00) и [10:30, 11:30) → есть пересечение
func Overlaps(aStart, aEnd, bStart, bEnd types.TimeString) bool {
	return aStart.IsBefore(bEnd) && bStart.IsBefore(aEnd)
}

// FindForRoom возвращает первое активное бронирование кабинета, пересекающееся с [start, end)
// Отмененные и no-show бронирования не учитываются
// excludeBookingID исключает само бронирование при проверке переноса
func FindForRoom(bookings []*domain.Booking, roomID int64, start, end types.TimeString, excludeBookingID *int64) *domain.Booking {
	for _, b := range bookings {
		if b.RoomID != roomID {
			continue
		}
		if conflicts(b, start, end, excludeBookingID) {
			return b
		}
	}
	return nil
}

// FindForStaff возвращает первое активное бронирование мастера, пересекающееся с [start, end)
func FindForStaff(bookings []*domain.Booking, staffID int64, start, end types.TimeString, excludeBookingID *int64) *domain.Booking {
	for _, b := range bookings {
		if b.StaffID != staffID {
			continue
		}
		if conflicts(b, start, end, excludeBookingID) {
			return b
		}
	}
	return nil
}

// HasForRoom проверяет, занят ли кабинет в интервале [start, end)
func HasForRoom(bookings []*domain.Booking, roomID int64, start, end types.TimeString, excludeBookingID *int64) bool {
	return FindForRoom(bookings, roomID, start, end, excludeBookingID) != nil
}

// HasForStaff проверяет, занят ли мастер в интервале [start, end)
func HasForStaff(bookings []*domain.Booking, staffID int64, start, end types.TimeString, excludeBookingID *int64) bool {
	return FindForStaff(bookings, staffID, start, end, excludeBookingID) != nil
}

func conflicts(b *domain.Booking, start, end types.TimeString, excludeBookingID *int64) bool {
	if !b.IsActive() {
		return false
	}
	if excludeBookingID != nil && b.ID == *excludeBookingID {
		return false
	}
	return Overlaps(b.StartTime, b.EndTime, start, end)
}
