// Package get_date_availability реализует сценарий получения сводки
// доступности по датам: сколько слотов всего, занято и свободно на каждую
// дату диапазона. Путь чтения, работает через кеш
package get_date_availability

import (
	"context"
	"fmt"
	"time"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/engine/availability"
)

const defaultRangeDays = 7

// UseCase получение сводки доступности по датам
type UseCase struct {
	bookings     BookingRepository
	schedules    ScheduleRepository
	cache        SummaryCache
	calculator   *availability.Calculator
	timeProvider TimeProvider
	log          Logger
}

// NewUseCase создает новый usecase сводки доступности
func NewUseCase(
	bookings BookingRepository,
	schedules ScheduleRepository,
	cache SummaryCache,
	calculator *availability.Calculator,
	timeProvider TimeProvider,
	log Logger,
) *UseCase {
	return &UseCase{
		bookings:     bookings,
		schedules:    schedules,
		cache:        cache,
		calculator:   calculator,
		timeProvider: timeProvider,
		log:          log,
	}
}

// Execute возвращает сводку доступности на каждую дату диапазона
// Результат берется из кеша; при промахе вычисляется по расписаниям
// и активным бронированиям и кешируется. Недоступность кеша не ломает
// запрос - сводка считается по живому хранилищу
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Применяем значения по умолчанию и валидируем диапазон
	startDate, days, err := normalizeRange(req, uc.timeProvider.Now())
	if err != nil {
		return nil, err
	}

	// 2. Пробуем кеш
	cached, err := uc.cache.GetDateSummaries(ctx, startDate, days)
	if err != nil {
		uc.log.Warn("GetDateAvailability: cache unavailable, falling back to storage: %v", err)
	}
	if cached != nil {
		return buildResponse(startDate, days, cached), nil
	}

	// 3. Загружаем расписания и бронирования всего диапазона одним запросом
	endDate := startDate.AddDate(0, 0, days-1)

	schedules, err := uc.schedules.GetForRange(ctx, startDate, endDate)
	if err != nil {
		uc.log.Error("GetDateAvailability: failed to get schedules: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedules: %v", ErrInternal, err)
	}

	bookings, err := uc.bookings.GetForRange(ctx, startDate, endDate, domain.BookingsFilter{})
	if err != nil {
		uc.log.Error("GetDateAvailability: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	schedulesByDate := groupSchedulesByDate(schedules)
	bookingsByDate := groupBookingsByDate(bookings)

	// 4. Считаем сводку на каждую дату диапазона
	summaries := make([]domain.DateAvailabilitySummary, 0, days)
	for i := 0; i < days; i++ {
		date := startDate.AddDate(0, 0, i)
		key := date.Format(domain.DateFormat)
		summaries = append(summaries, uc.calculator.DateSummary(date, schedulesByDate[key], bookingsByDate[key]))
	}

	// 5. Кешируем; ошибка кеша не влияет на ответ
	if err := uc.cache.SetDateSummaries(ctx, startDate, days, summaries); err != nil {
		uc.log.Warn("GetDateAvailability: failed to cache summaries: %v", err)
	}

	return buildResponse(startDate, days, summaries), nil
}

// normalizeRange применяет дефолты и проверяет границы диапазона
func normalizeRange(req *Request, now time.Time) (time.Time, int, error) {
	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	days := req.Days
	if days == 0 {
		days = defaultRangeDays
	}
	if days < 0 {
		return time.Time{}, 0, fmt.Errorf("%w: days must be positive", ErrInvalidInput)
	}
	if days > domain.MaxDateSummaryRangeDays {
		return time.Time{}, 0, fmt.Errorf("%w: at most %d days per request", ErrRangeTooLarge, domain.MaxDateSummaryRangeDays)
	}

	return startDate, days, nil
}

func groupSchedulesByDate(schedules []*domain.WorkSchedule) map[string][]*domain.WorkSchedule {
	grouped := make(map[string][]*domain.WorkSchedule)
	for _, entry := range schedules {
		key := entry.WorkDate.Format(domain.DateFormat)
		grouped[key] = append(grouped[key], entry)
	}
	return grouped
}

func groupBookingsByDate(bookings []*domain.Booking) map[string][]*domain.Booking {
	grouped := make(map[string][]*domain.Booking)
	for _, b := range bookings {
		key := b.BookingDate.Format(domain.DateFormat)
		grouped[key] = append(grouped[key], b)
	}
	return grouped
}

func buildResponse(startDate time.Time, days int, summaries []domain.DateAvailabilitySummary) *Response {
	result := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		result = append(result, Summary{
			Date:            s.Date,
			TotalSlots:      s.TotalSlots,
			BookedSlots:     s.BookedSlots,
			AvailableSlots:  s.AvailableSlots,
			HasAvailability: s.HasAvailability,
		})
	}

	return &Response{
		StartDate: startDate,
		Days:      days,
		Summaries: result,
	}
}
