package allocation

import "errors"

var (
	// ErrRoomUnavailable возвращается, когда ни один кабинет не проходит
	// правила совместимости или все подходящие заняты
	ErrRoomUnavailable = errors.New("allocation: no compliant room available")

	// ErrStaffUnavailable возвращается, когда нет свободного мастера
	// с покрывающим расписанием и подходящей специализацией
	ErrStaffUnavailable = errors.New("allocation: no staff member available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("allocation: invalid input")
)
