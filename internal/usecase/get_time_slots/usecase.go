// Package get_time_slots реализует сценарий получения доступных временных
// слотов на дату: для каждого времени начала в рамках рабочих часов
// считается число свободных мастеров и кабинетов. Путь чтения, работает
// через кеш
package get_time_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/engine/availability"
	"github.com/spaflow/booking-engine/internal/infra/cache"
	catalogRepo "github.com/spaflow/booking-engine/internal/infra/storage/catalog"
)

// UseCase получение доступных слотов на дату
type UseCase struct {
	bookings   BookingRepository
	catalog    CatalogRepository
	schedules  ScheduleRepository
	cache      SlotCache
	calculator *availability.Calculator
	log        Logger
}

// NewUseCase создает новый usecase расчета слотов
func NewUseCase(
	bookings BookingRepository,
	catalog CatalogRepository,
	schedules ScheduleRepository,
	slotCache SlotCache,
	calculator *availability.Calculator,
	log Logger,
) *UseCase {
	return &UseCase{
		bookings:   bookings,
		catalog:    catalog,
		schedules:  schedules,
		cache:      slotCache,
		calculator: calculator,
		log:        log,
	}
}

// Execute возвращает доступность каждого времени начала на дату
// Результат берется из кеша; при промахе считается по свежему снапшоту
// расписаний и бронирований и кешируется. Кеш здесь только ускоряет чтение:
// создание бронирования всегда перепроверяет занятость по живому хранилищу
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидируем входные данные
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// 2. Если указана услуга - загружаем и проверяем, что она активна
	var service *domain.Service
	if req.ServiceID != nil {
		var err error
		service, err = uc.catalog.GetService(ctx, *req.ServiceID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				return nil, fmt.Errorf("%w: service %d", ErrServiceNotFound, *req.ServiceID)
			}
			uc.log.Error("GetTimeSlots: failed to get service %d: %v", *req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		if !service.IsActive {
			return nil, fmt.Errorf("%w: service %d", ErrServiceInactive, service.ID)
		}
	}

	// 3. Пробуем кеш
	query := cache.SlotQuery{
		Date:      req.Date,
		ServiceID: req.ServiceID,
		StaffID:   req.StaffID,
		RoomID:    req.RoomID,
	}

	cached, err := uc.cache.GetTimeSlots(ctx, query)
	if err != nil {
		uc.log.Warn("GetTimeSlots: cache unavailable, falling back to storage: %v", err)
	}
	if cached != nil {
		return buildResponse(req, cached), nil
	}

	// 4. Загружаем снапшот данных на дату
	rooms, err := uc.catalog.ListActiveRooms(ctx)
	if err != nil {
		uc.log.Error("GetTimeSlots: failed to list rooms: %v", err)
		return nil, fmt.Errorf("%w: failed to list rooms: %v", ErrInternal, err)
	}

	staff, err := uc.catalog.ListActiveStaff(ctx)
	if err != nil {
		uc.log.Error("GetTimeSlots: failed to list staff: %v", err)
		return nil, fmt.Errorf("%w: failed to list staff: %v", ErrInternal, err)
	}

	schedules, err := uc.schedules.GetForDate(ctx, req.Date)
	if err != nil {
		uc.log.Error("GetTimeSlots: failed to get schedules: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedules: %v", ErrInternal, err)
	}

	bookings, err := uc.bookings.GetForDate(ctx, req.Date, domain.BookingsFilter{})
	if err != nil {
		uc.log.Error("GetTimeSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 5. Считаем доступность каждого времени начала
	slots, err := uc.calculator.TimeSlots(availability.TimeSlotsInput{
		Date:        req.Date,
		Service:     service,
		Staff:       staff,
		Rooms:       rooms,
		Schedules:   schedules,
		Bookings:    bookings,
		StaffFilter: req.StaffID,
		RoomFilter:  req.RoomID,
	})
	if err != nil {
		uc.log.Error("GetTimeSlots: failed to calculate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to calculate slots: %v", ErrInternal, err)
	}

	// 6. Кешируем; ошибка кеша не влияет на ответ
	if err := uc.cache.SetTimeSlots(ctx, query, slots); err != nil {
		uc.log.Warn("GetTimeSlots: failed to cache slots: %v", err)
	}

	return buildResponse(req, slots), nil
}

func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.ServiceID != nil && *req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	if req.StaffID != nil && *req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}
	if req.RoomID != nil && *req.RoomID <= 0 {
		return fmt.Errorf("%w: roomID must be positive", ErrInvalidInput)
	}
	return nil
}

func buildResponse(req *Request, slots []domain.TimeSlot) *Response {
	result := make([]Slot, 0, len(slots))
	for _, s := range slots {
		result = append(result, Slot{
			StartTime:           s.StartTime,
			DurationMinutes:     s.DurationMinutes,
			Available:           s.Available,
			AvailableStaffCount: s.AvailableStaffCount,
			AvailableRoomCount:  s.AvailableRoomCount,
			SuggestedStaffID:    s.SuggestedStaffID,
			SuggestedRoomID:     s.SuggestedRoomID,
		})
	}

	return &Response{
		Date:  req.Date,
		Slots: result,
	}
}
