package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено
	ErrCannotCancel = errors.New("booking cannot be cancelled")

	// ErrCannotReschedule возвращается, когда бронирование нельзя перенести
	ErrCannotReschedule = errors.New("booking cannot be rescheduled")

	// ErrInvalidStatus возвращается при попытке установить неизвестный статус
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidDate возвращается при дате переноса в прошлом
	// или за горизонтом бронирования
	ErrInvalidDate = errors.New("invalid booking date")

	// ErrInvalidTimeSlot возвращается, когда новый слот выходит за рабочие часы
	ErrInvalidTimeSlot = errors.New("invalid time slot")

	// ErrRoomUnavailable возвращается, когда для нового слота нет свободного кабинета
	ErrRoomUnavailable = errors.New("no compliant room available")

	// ErrStaffUnavailable возвращается, когда для нового слота нет свободного мастера
	ErrStaffUnavailable = errors.New("no staff member available")

	// ErrRescheduleConflict возвращается, когда перенос проиграл гонку
	// конкурентным бронированиям
	ErrRescheduleConflict = errors.New("reschedule conflict")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
