// Package create_booking реализует сценарий создания бронирования:
// валидация запроса, подбор пары (кабинет, мастер) и атомарная вставка
// в сериализуемой транзакции с защитой от двойного бронирования
package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/engine/allocation"
	bookingRepo "github.com/spaflow/booking-engine/internal/infra/storage/booking"
	catalogRepo "github.com/spaflow/booking-engine/internal/infra/storage/catalog"
	"github.com/spaflow/booking-engine/internal/integrations/auditservice"
	"github.com/spaflow/booking-engine/pkg/types"
)

// Settings параметры движка бронирования
type Settings struct {
	BusinessHoursStart     types.TimeString
	BusinessHoursEnd       types.TimeString
	MaxAdvanceBookingDays  int
	MinAdvanceBookingHours int
}

// UseCase создание бронирования
type UseCase struct {
	bookings     BookingRepository
	catalog      CatalogRepository
	schedules    ScheduleRepository
	cache        CacheInvalidator
	audit        AuditNotifier
	txManager    TransactionManager
	metrics      MetricsRecorder
	settings     Settings
	timeProvider TimeProvider
	log          Logger
}

// NewUseCase создает новый usecase создания бронирования
func NewUseCase(
	bookings BookingRepository,
	catalog CatalogRepository,
	schedules ScheduleRepository,
	cache CacheInvalidator,
	audit AuditNotifier,
	txManager TransactionManager,
	metrics MetricsRecorder,
	settings Settings,
	timeProvider TimeProvider,
	log Logger,
) *UseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &UseCase{
		bookings:     bookings,
		catalog:      catalog,
		schedules:    schedules,
		cache:        cache,
		audit:        audit,
		txManager:    txManager,
		metrics:      metrics,
		settings:     settings,
		timeProvider: timeProvider,
		log:          log,
	}
}

// Execute создает бронирование
//
// Подбор ресурсов и вставка выполняются внутри одной сериализуемой
// транзакции: бронирования даты читаются с блокировкой FOR UPDATE,
// поэтому две конкурентные заявки на пересекающийся интервал не могут
// пройти проверку конфликтов одновременно. Проигравшая попытка
// повторяется ровно один раз на свежем снапшоте
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидируем входные данные
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Проверяем дату: не в прошлом и в пределах горизонта бронирования
	if err := validateDate(req.Date, now, uc.settings.MaxAdvanceBookingDays); err != nil {
		return nil, err
	}

	// 3. Загружаем услугу и проверяем, что она активна
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: service %d", ErrServiceNotFound, req.ServiceID)
		}
		uc.log.Error("CreateBooking: failed to get service %d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		return nil, fmt.Errorf("%w: service %d", ErrServiceInactive, service.ID)
	}

	// 4. Вычисляем конец слота и проверяем временные ограничения
	endTime, err := req.StartTime.AddMinutes(service.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}
	if err := validateWithinBusinessHours(req.StartTime, endTime,
		uc.settings.BusinessHoursStart, uc.settings.BusinessHoursEnd); err != nil {
		return nil, err
	}
	if err := validateBookingNotice(req.Date, req.StartTime, now, uc.settings.MinAdvanceBookingHours); err != nil {
		return nil, err
	}

	// 5. Загружаем каталоги вне транзакции: кабинеты и мастера меняются
	// редко, держать на них сериализуемый снапшот не нужно
	rooms, err := uc.catalog.ListActiveRooms(ctx)
	if err != nil {
		uc.log.Error("CreateBooking: failed to list rooms: %v", err)
		return nil, fmt.Errorf("%w: failed to list rooms: %v", ErrInternal, err)
	}
	staff, err := uc.catalog.ListActiveStaff(ctx)
	if err != nil {
		uc.log.Error("CreateBooking: failed to list staff: %v", err)
		return nil, fmt.Errorf("%w: failed to list staff: %v", ErrInternal, err)
	}

	// 6. Подбираем ресурсы и вставляем атомарно; при проигранной гонке
	// повторяем ровно один раз
	created, err := uc.allocateAndInsert(ctx, req, service, endTime, rooms, staff)
	if err != nil && bookingRepo.IsConflict(err) {
		uc.metrics.IncBookingConflict("retry")
		uc.log.Warn("CreateBooking: lost slot race, retrying once: customer_id=%d, date=%s, start=%s",
			req.CustomerID, req.Date.Format(domain.DateFormat), req.StartTime)
		created, err = uc.allocateAndInsert(ctx, req, service, endTime, rooms, staff)
	}
	if err != nil {
		return nil, uc.mapAllocationError(err, req)
	}

	uc.metrics.IncBookingCreated(string(created.Status))
	uc.log.Info("CreateBooking: booking created: id=%d, customer_id=%d, service_id=%d, staff_id=%d, room_id=%d, %s %s-%s",
		created.ID, created.CustomerID, created.ServiceID, created.StaffID, created.RoomID,
		created.BookingDate.Format(domain.DateFormat), created.StartTime, created.EndTime)

	// 7. Инвалидируем кеш доступности затронутой даты до ответа клиенту,
	// чтобы следующий запрос доступности не увидел устаревшие слоты
	if err := uc.cache.Invalidate(ctx, created.BookingDate); err != nil {
		uc.log.Warn("CreateBooking: failed to invalidate availability cache for %s: %v",
			created.BookingDate.Format(domain.DateFormat), err)
	}

	// 8. Отправляем событие аудита о появлении нового бронирования
	uc.audit.BookingStatusChanged(ctx, auditservice.StatusChangeEvent{
		BookingID: created.ID,
		OldStatus: "",
		NewStatus: string(created.Status),
		ActorID:   req.CustomerID,
	})

	return buildResponse(created), nil
}

// allocateAndInsert одна попытка: сериализуемая транзакция, внутри которой
// читается свежий снапшот занятости с блокировкой строк, подбирается пара
// (кабинет, мастер) и вставляется бронирование
func (uc *UseCase) allocateAndInsert(
	ctx context.Context,
	req *Request,
	service *domain.Service,
	endTime types.TimeString,
	rooms []*domain.Room,
	staff []*domain.StaffMember,
) (*domain.Booking, error) {
	var created *domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		schedules, err := uc.schedules.GetForDate(txCtx, req.Date)
		if err != nil {
			return fmt.Errorf("%w: failed to get schedules: %v", ErrInternal, err)
		}

		bookings, err := uc.bookings.GetForDate(txCtx, req.Date, domain.BookingsFilter{})
		if err != nil {
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		alloc, err := allocation.Allocate(allocation.Input{
			Service:   service,
			StartTime: req.StartTime,
			EndTime:   endTime,
			PartySize: req.PartySize,
			Rooms:     rooms,
			Staff:     staff,
			Schedules: schedules,
			Bookings:  bookings,
		})
		if err != nil {
			return err
		}

		created, err = uc.bookings.Create(txCtx, &domain.Booking{
			CustomerID:      req.CustomerID,
			ServiceID:       service.ID,
			StaffID:         alloc.StaffID,
			RoomID:          alloc.RoomID,
			BookingDate:     req.Date,
			StartTime:       req.StartTime,
			EndTime:         endTime,
			Status:          domain.StatusConfirmed,
			ServiceName:     service.Name,
			TotalPrice:      service.Price,
			SpecialRequests: req.SpecialRequests,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// mapAllocationError переводит ошибки аллокатора и хранилища
// в sentinel-ошибки usecase
func (uc *UseCase) mapAllocationError(err error, req *Request) error {
	switch {
	case errors.Is(err, allocation.ErrRoomUnavailable):
		uc.metrics.IncAllocationFailed("room")
		return fmt.Errorf("%w: %v", ErrRoomUnavailable, err)

	case errors.Is(err, allocation.ErrStaffUnavailable):
		uc.metrics.IncAllocationFailed("staff")
		return fmt.Errorf("%w: %v", ErrStaffUnavailable, err)

	case errors.Is(err, allocation.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)

	case bookingRepo.IsConflict(err):
		uc.metrics.IncBookingConflict("final")
		uc.log.Warn("CreateBooking: both attempts lost slot race: customer_id=%d, date=%s, start=%s",
			req.CustomerID, req.Date.Format(domain.DateFormat), req.StartTime)
		return fmt.Errorf("%w: slot was taken by a concurrent booking", ErrBookingConflict)

	case errors.Is(err, ErrInternal):
		return err

	default:
		uc.log.Error("CreateBooking: unexpected error: %v", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func buildResponse(b *domain.Booking) *Response {
	return &Response{
		ID:              b.ID,
		CustomerID:      b.CustomerID,
		ServiceID:       b.ServiceID,
		StaffID:         b.StaffID,
		RoomID:          b.RoomID,
		BookingDate:     b.BookingDate,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Status:          string(b.Status),
		ServiceName:     b.ServiceName,
		TotalPrice:      b.TotalPrice,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
