package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrServiceInactive возвращается, когда услуга выведена из каталога
	ErrServiceInactive = errors.New("create_booking: service is not active")

	// ErrInvalidDate возвращается при дате бронирования в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает горизонт бронирования
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrTooLateToBook возвращается, когда до начала слота осталось меньше
	// минимального времени предварительной записи
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrInvalidTimeSlot возвращается, когда слот выходит за рабочие часы
	// или процедура не успевает завершиться до закрытия
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrRoomUnavailable возвращается, когда ни один кабинет не проходит
	// правила совместимости или все подходящие заняты
	ErrRoomUnavailable = errors.New("create_booking: no compliant room available")

	// ErrStaffUnavailable возвращается, когда нет свободного мастера
	ErrStaffUnavailable = errors.New("create_booking: no staff member available")

	// ErrBookingConflict возвращается, когда обе попытки атомарной вставки
	// проиграли гонку конкурентным бронированиям
	ErrBookingConflict = errors.New("create_booking: booking conflict")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
