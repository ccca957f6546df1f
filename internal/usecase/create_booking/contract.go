package create_booking

import (
	"context"
	"time"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/integrations/auditservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
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

// CacheInvalidator инвалидирует кеш доступности затронутой даты
type CacheInvalidator interface {
	Invalidate(ctx context.Context, date time.Time) error
}

// AuditNotifier отправляет события смены статуса во внешний аудит
type AuditNotifier interface {
	BookingStatusChanged(ctx context.Context, event auditservice.StatusChangeEvent)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder записывает бизнес-метрики бронирований
type MetricsRecorder interface {
	IncBookingCreated(status string)
	IncBookingConflict(resource string)
	IncAllocationFailed(resource string)
}

// noopMetrics используется, когда метрики выключены
type noopMetrics struct{}

func (noopMetrics) IncBookingCreated(string)   {}
func (noopMetrics) IncBookingConflict(string)  {}
func (noopMetrics) IncAllocationFailed(string) {}

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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
