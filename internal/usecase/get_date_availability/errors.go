package get_date_availability

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_date_availability: invalid input data")

	// ErrRangeTooLarge возвращается, когда запрошенный диапазон дат
	// превышает максимально допустимый
	ErrRangeTooLarge = errors.New("get_date_availability: date range is too large")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_date_availability: internal error")
)
