package get_date_availability

import "time"

// Request модель запроса сводки доступности по датам
type Request struct {
	StartDate time.Time // начало диапазона; нулевое значение = сегодня
	Days      int       // длина диапазона в днях; 0 = 7 дней
}

// Summary сводка доступности одной даты
type Summary struct {
	Date            time.Time
	TotalSlots      int
	BookedSlots     int
	AvailableSlots  int
	HasAvailability bool
}

// Response модель ответа со сводками по датам диапазона
type Response struct {
	StartDate time.Time
	Days      int
	Summaries []Summary
}
