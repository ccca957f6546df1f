package create_booking

import (
	"fmt"
	"time"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.PartySize < 0 {
		return fmt.Errorf("%w: partySize must not be negative", ErrInvalidInput)
	}

	if req.SpecialRequests != nil && len(*req.SpecialRequests) > domain.MaxSpecialRequestsLength {
		return fmt.Errorf("%w: specialRequests must not exceed %d characters",
			ErrInvalidInput, domain.MaxSpecialRequestsLength)
	}

	return nil
}

// validateDate проверяет, что дата не в прошлом и в пределах горизонта бронирования
func validateDate(bookingDate time.Time, now time.Time, maxAdvanceBookingDays int) error {
	if isDateInPast(bookingDate, now) {
		return ErrInvalidDate
	}

	maxDate := startOfDay(now).AddDate(0, 0, maxAdvanceBookingDays)
	if startOfDay(bookingDate).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceBookingDays)
	}

	return nil
}

// validateBookingNotice проверяет минимальное время предварительной записи
// Сравнивается полный момент начала (дата + время), поэтому проверка работает
// и через границу суток: запись на завтра 00:30 при now = 23:00 тоже нарушает
// двухчасовой порог
func validateBookingNotice(
	bookingDate time.Time,
	startTime types.TimeString,
	now time.Time,
	minAdvanceBookingHours int,
) error {
	startMinutes, err := startTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: failed to parse start time: %v", ErrInvalidInput, err)
	}

	bookingStart := startOfDay(bookingDate).Add(time.Duration(startMinutes) * time.Minute)
	minAllowed := now.Add(time.Duration(minAdvanceBookingHours) * time.Hour)

	if bookingStart.Before(minAllowed) {
		return fmt.Errorf("%w: must book at least %d hours in advance", ErrTooLateToBook, minAdvanceBookingHours)
	}

	return nil
}

// validateWithinBusinessHours проверяет, что процедура целиком умещается
// в рабочие часы салона
func validateWithinBusinessHours(start, end, open, close types.TimeString) error {
	if start.IsBefore(open) || end.IsAfter(close) {
		return fmt.Errorf("%w: slot %s-%s is outside business hours %s-%s",
			ErrInvalidTimeSlot, start, end, open, close)
	}
	return nil
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	return startOfDay(date).Before(startOfDay(now))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
