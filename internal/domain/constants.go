package domain

// Default engine configuration values
const (
	DefaultSlotGranularityMinutes = 30
	DefaultServiceDurationMinutes = 60 // для запросов доступности без указания услуги
	DefaultBusinessHoursStart     = "09:00"
	DefaultBusinessHoursEnd       = "19:00"
	DefaultMaxAdvanceBookingDays  = 90
	DefaultMinAdvanceBookingHours = 2
	DefaultDateSummaryCacheTTLSec = 300
	DefaultSlotCacheTTLSec        = 120
)

// Business validation constants
const (
	MinSlotGranularityMinutes   = 5
	MaxSlotGranularityMinutes   = 120
	MaxSpecialRequestsLength    = 500
	MaxCancellationReasonLength = 500
	MaxDateSummaryRangeDays     = 60
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses статусы, не занимающие кабинет и мастера
// Используются для фильтрации при подсчете доступности и проверке конфликтов
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusNoShow,
}

// ActiveStatuses статусы, занимающие кабинет и мастера
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}
