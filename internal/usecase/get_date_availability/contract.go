package get_date_availability

import (
	"context"
	"time"

	"github.com/spaflow/booking-engine/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetForRange(ctx context.Context, startDate, endDate time.Time, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// ScheduleRepository интерфейс репозитория рабочих расписаний
type ScheduleRepository interface {
	GetForRange(ctx context.Context, startDate, endDate time.Time) ([]*domain.WorkSchedule, error)
}

// SummaryCache кеш сводок доступности по датам
type SummaryCache interface {
	GetDateSummaries(ctx context.Context, startDate time.Time, days int) ([]domain.DateAvailabilitySummary, error)
	SetDateSummaries(ctx context.Context, startDate time.Time, days int, summaries []domain.DateAvailabilitySummary) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
