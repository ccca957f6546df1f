// Package bookings сервис жизненного цикла бронирования: просмотр, история
// клиента, отмена, смена статуса и перенос на новый слот
package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/engine/allocation"
	bookingRepo "github.com/spaflow/booking-engine/internal/infra/storage/booking"
	"github.com/spaflow/booking-engine/internal/integrations/auditservice"
	"github.com/spaflow/booking-engine/internal/service/bookings/models"
	"github.com/spaflow/booking-engine/pkg/types"
)

// Settings параметры движка, используемые при переносе бронирования
type Settings struct {
	BusinessHoursStart     types.TimeString
	BusinessHoursEnd       types.TimeString
	MaxAdvanceBookingDays  int
	MinAdvanceBookingHours int
}

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	catalog      CatalogRepository
	schedules    ScheduleRepository
	cache        CacheInvalidator
	audit        AuditNotifier
	txManager    TransactionManager
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	catalog CatalogRepository,
	schedules ScheduleRepository,
	cache CacheInvalidator,
	audit AuditNotifier,
	txManager TransactionManager,
	settings Settings,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		catalog:      catalog,
		schedules:    schedules,
		cache:        cache,
		audit:        audit,
		txManager:    txManager,
		settings:     settings,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	booking, err := s.getBooking(ctx, id, "GetByID")
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// GetCustomerBookings получает историю бронирований клиента
// Опционально фильтрует по статусу
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for customer=%d, status=%v", req.CustomerID, req.Status)

	if req.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerBookings: invalid status=%s for customer=%d", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidStatus)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByCustomerID(ctx, req.CustomerID, domainStatus)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: successfully fetched %d bookings for customer=%d", len(bookings), req.CustomerID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование
// Отмена допустима только из статусов pending и confirmed; отмененное
// бронирование освобождает свой интервал, поэтому кеш доступности даты
// инвалидируется до возврата результата
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by actor=%d", bookingID, req.ActorID)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellationReason must not exceed %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	booking, err := s.getBooking(ctx, bookingID, "Cancel")
	if err != nil {
		return err
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return fmt.Errorf("%w: status %s", ErrCannotCancel, booking.Status)
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID, req.CancellationReason); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.invalidateDate(ctx, booking.BookingDate, "Cancel")

	s.audit.BookingStatusChanged(ctx, auditservice.StatusChangeEvent{
		BookingID: bookingID,
		OldStatus: string(booking.Status),
		NewStatus: string(domain.StatusCancelled),
		ActorID:   req.ActorID,
		Reason:    &req.CancellationReason,
	})

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// UpdateStatus переводит бронирование в новый статус по машине состояний
// pending → confirmed → in_progress → completed; отмена и no_show
// допустимы только из разрешенных статусов
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by actor=%d",
		bookingID, req.Status, req.ActorID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return fmt.Errorf("%w: %s", ErrInvalidStatus, req.Status)
	}

	booking, err := s.getBooking(ctx, bookingID, "UpdateStatus")
	if err != nil {
		return err
	}

	if !booking.CanTransitionTo(newStatus) {
		s.logger.Warn("UpdateStatus: invalid transition %s -> %s for booking id=%d",
			booking.Status, newStatus, bookingID)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, newStatus)
	}

	// Отмена через смену статуса идет тем же путем, что и Cancel,
	// чтобы проставить cancelled_at
	if newStatus == domain.StatusCancelled {
		err = s.bookingRepo.Cancel(ctx, bookingID, "")
	} else {
		err = s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus)
	}
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	// Переходы в cancelled и no_show освобождают интервал
	if newStatus == domain.StatusCancelled || newStatus == domain.StatusNoShow {
		s.invalidateDate(ctx, booking.BookingDate, "UpdateStatus")
	}

	s.audit.BookingStatusChanged(ctx, auditservice.StatusChangeEvent{
		BookingID: bookingID,
		OldStatus: string(booking.Status),
		NewStatus: string(newStatus),
		ActorID:   req.ActorID,
	})

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	return nil
}

// Reschedule переносит бронирование на новый слот
// Подбор ресурсов выполняется заново по правилам аллокации; само бронирование
// исключается из проверок конфликтов, поэтому перенос внутри собственного
// интервала разрешен. Вставка атомарна, проигранная гонка повторяется
// ровно один раз
func (s *Service) Reschedule(ctx context.Context, bookingID int64, req *models.RescheduleBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Reschedule: rescheduling booking id=%d to %s %s by actor=%d",
		bookingID, req.Date.Format(domain.DateFormat), req.StartTime, req.ActorID)

	booking, err := s.getBooking(ctx, bookingID, "Reschedule")
	if err != nil {
		return nil, err
	}

	if !booking.CanBeRescheduled() {
		s.logger.Warn("Reschedule: booking id=%d cannot be rescheduled, status=%s", bookingID, booking.Status)
		return nil, fmt.Errorf("%w: status %s", ErrCannotReschedule, booking.Status)
	}

	service, err := s.catalog.GetService(ctx, booking.ServiceID)
	if err != nil {
		s.logger.Error("Reschedule: failed to get service %d for booking id=%d: %v", booking.ServiceID, bookingID, err)
		return nil, fmt.Errorf("%w: Reschedule - failed to get service: %v", ErrInternal, err)
	}

	endTime, err := req.StartTime.AddMinutes(service.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}

	if err := s.validateNewSlot(req.Date, req.StartTime, endTime); err != nil {
		return nil, err
	}

	rooms, err := s.catalog.ListActiveRooms(ctx)
	if err != nil {
		s.logger.Error("Reschedule: failed to list rooms: %v", err)
		return nil, fmt.Errorf("%w: Reschedule - failed to list rooms: %v", ErrInternal, err)
	}
	staff, err := s.catalog.ListActiveStaff(ctx)
	if err != nil {
		s.logger.Error("Reschedule: failed to list staff: %v", err)
		return nil, fmt.Errorf("%w: Reschedule - failed to list staff: %v", ErrInternal, err)
	}

	oldDate := booking.BookingDate

	updated, err := s.allocateAndMove(ctx, booking, service, req, endTime, rooms, staff)
	if err != nil && bookingRepo.IsConflict(err) {
		s.logger.Warn("Reschedule: lost slot race, retrying once: booking id=%d", bookingID)
		updated, err = s.allocateAndMove(ctx, booking, service, req, endTime, rooms, staff)
	}
	if err != nil {
		return nil, s.mapRescheduleError(err, bookingID)
	}

	// Перенос затрагивает доступность обеих дат
	s.invalidateDate(ctx, oldDate, "Reschedule")
	if !sameDate(oldDate, updated.BookingDate) {
		s.invalidateDate(ctx, updated.BookingDate, "Reschedule")
	}

	s.logger.Info("Reschedule: successfully rescheduled booking id=%d to %s %s-%s, staff_id=%d, room_id=%d",
		bookingID, updated.BookingDate.Format(domain.DateFormat), updated.StartTime, updated.EndTime,
		updated.StaffID, updated.RoomID)

	return models.FromDomainBooking(updated), nil
}

// allocateAndMove одна попытка переноса: сериализуемая транзакция, внутри
// которой подбирается пара (кабинет, мастер) на новом слоте и обновляется
// бронирование
func (s *Service) allocateAndMove(
	ctx context.Context,
	booking *domain.Booking,
	service *domain.Service,
	req *models.RescheduleBookingRequest,
	endTime types.TimeString,
	rooms []*domain.Room,
	staff []*domain.StaffMember,
) (*domain.Booking, error) {
	updated := *booking

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		schedules, err := s.schedules.GetForDate(txCtx, req.Date)
		if err != nil {
			return fmt.Errorf("%w: failed to get schedules: %v", ErrInternal, err)
		}

		bookings, err := s.bookingRepo.GetForDate(txCtx, req.Date, domain.BookingsFilter{})
		if err != nil {
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		alloc, err := allocation.Allocate(allocation.Input{
			Service:          service,
			StartTime:        req.StartTime,
			EndTime:          endTime,
			Rooms:            rooms,
			Staff:            staff,
			Schedules:        schedules,
			Bookings:         bookings,
			ExcludeBookingID: &booking.ID,
		})
		if err != nil {
			return err
		}

		updated.BookingDate = req.Date
		updated.StartTime = req.StartTime
		updated.EndTime = endTime
		updated.StaffID = alloc.StaffID
		updated.RoomID = alloc.RoomID

		return s.bookingRepo.Reschedule(txCtx, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// validateNewSlot проверяет дату и время нового слота теми же правилами,
// что и создание бронирования
func (s *Service) validateNewSlot(date time.Time, start, end types.TimeString) error {
	now := s.timeProvider.Now()

	if startOfDay(date).Before(startOfDay(now)) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidDate)
	}

	maxDate := startOfDay(now).AddDate(0, 0, s.settings.MaxAdvanceBookingDays)
	if startOfDay(date).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrInvalidDate, s.settings.MaxAdvanceBookingDays)
	}

	if start.IsBefore(s.settings.BusinessHoursStart) || end.IsAfter(s.settings.BusinessHoursEnd) {
		return fmt.Errorf("%w: slot %s-%s is outside business hours %s-%s",
			ErrInvalidTimeSlot, start, end, s.settings.BusinessHoursStart, s.settings.BusinessHoursEnd)
	}

	startMinutes, err := start.Minutes()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	bookingStart := startOfDay(date).Add(time.Duration(startMinutes) * time.Minute)
	minAllowed := now.Add(time.Duration(s.settings.MinAdvanceBookingHours) * time.Hour)
	if bookingStart.Before(minAllowed) {
		return fmt.Errorf("%w: must book at least %d hours in advance",
			ErrInvalidDate, s.settings.MinAdvanceBookingHours)
	}

	return nil
}

// mapRescheduleError переводит ошибки аллокатора и хранилища
// в sentinel-ошибки сервиса
func (s *Service) mapRescheduleError(err error, bookingID int64) error {
	switch {
	case errors.Is(err, allocation.ErrRoomUnavailable):
		return fmt.Errorf("%w: %v", ErrRoomUnavailable, err)

	case errors.Is(err, allocation.ErrStaffUnavailable):
		return fmt.Errorf("%w: %v", ErrStaffUnavailable, err)

	case errors.Is(err, allocation.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)

	case bookingRepo.IsConflict(err):
		s.logger.Warn("Reschedule: both attempts lost slot race: booking id=%d", bookingID)
		return fmt.Errorf("%w: slot was taken by a concurrent booking", ErrRescheduleConflict)

	case errors.Is(err, ErrInternal):
		return err

	default:
		s.logger.Error("Reschedule: unexpected error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, id int64, op string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// invalidateDate инвалидирует кеш доступности даты; ошибка кеша логируется,
// но не ломает основную операцию
func (s *Service) invalidateDate(ctx context.Context, date time.Time, op string) {
	if err := s.cache.Invalidate(ctx, date); err != nil {
		s.logger.Warn("%s: failed to invalidate availability cache for %s: %v",
			op, date.Format(domain.DateFormat), err)
	}
}

func sameDate(a, b time.Time) bool {
	return a.Format(domain.DateFormat) == b.Format(domain.DateFormat)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
