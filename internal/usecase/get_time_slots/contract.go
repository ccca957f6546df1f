package get_time_slots

import (
	"context"
	"time"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/infra/cache"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetForDate(ctx context.Context, date time.Time, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// CatalogRepository интерфейс каталогов услуг, кабинетов и мастеров
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	ListActiveRooms(ctx context.Context) ([]*domain.Room, error)
	ListActiveStaff(ctx context.Context) ([]*domain.StaffMember, error)
}

// ScheduleRepository интерфейс репозитория рабочих расписаний
type ScheduleRepository interface {
	GetForDate(ctx context.Context, date time.Time) ([]*domain.WorkSchedule, error)
}

// SlotCache кеш рассчитанных слотов
type SlotCache interface {
	GetTimeSlots(ctx context.Context, query cache.SlotQuery) ([]domain.TimeSlot, error)
	SetTimeSlots(ctx context.Context, query cache.SlotQuery, slots []domain.TimeSlot) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
