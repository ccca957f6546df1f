package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaflow/booking-engine/internal/domain"
	bookingRepo "github.com/spaflow/booking-engine/internal/infra/storage/booking"
	"github.com/spaflow/booking-engine/internal/integrations/auditservice"
	"github.com/spaflow/booking-engine/internal/service/bookings/models"
	"github.com/spaflow/booking-engine/pkg/ptr"
	"github.com/spaflow/booking-engine/pkg/types"
)

// Фейки зависимостей

type fakeBookingRepo struct {
	byID map[int64]*domain.Booking

	cancelled     []int64
	statusUpdates map[int64]domain.BookingStatus
	rescheduled   *domain.Booking

	rescheduleErrs []error
	rescheduleCall int
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	byID := make(map[int64]*domain.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}
	return &fakeBookingRepo{
		byID:          byID,
		statusUpdates: make(map[int64]domain.BookingStatus),
	}
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetByCustomerID(_ context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.byID {
		if b.CustomerID != customerID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (f *fakeBookingRepo) GetForDate(_ context.Context, date time.Time, _ domain.BookingsFilter) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.byID {
		if b.BookingDate.Equal(date) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	if _, ok := f.byID[id]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	f.statusUpdates[id] = status
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id int64, _ string) error {
	if _, ok := f.byID[id]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeBookingRepo) Reschedule(_ context.Context, b *domain.Booking) error {
	call := f.rescheduleCall
	f.rescheduleCall++
	if call < len(f.rescheduleErrs) && f.rescheduleErrs[call] != nil {
		return f.rescheduleErrs[call]
	}
	f.rescheduled = b
	return nil
}

type fakeCatalog struct {
	service *domain.Service
	rooms   []*domain.Room
	staff   []*domain.StaffMember
}

func (f *fakeCatalog) GetService(_ context.Context, _ int64) (*domain.Service, error) {
	return f.service, nil
}

func (f *fakeCatalog) ListActiveRooms(_ context.Context) ([]*domain.Room, error) {
	return f.rooms, nil
}

func (f *fakeCatalog) ListActiveStaff(_ context.Context) ([]*domain.StaffMember, error) {
	return f.staff, nil
}

type fakeSchedules struct{}

func (fakeSchedules) GetForDate(_ context.Context, date time.Time) ([]*domain.WorkSchedule, error) {
	return []*domain.WorkSchedule{
		{StaffID: 10, WorkDate: date, StartTime: "09:00", EndTime: "19:00", Status: domain.ScheduleAvailable},
	}, nil
}

type fakeCache struct {
	invalidated []time.Time
}

func (f *fakeCache) Invalidate(_ context.Context, date time.Time) error {
	f.invalidated = append(f.invalidated, date)
	return nil
}

type fakeAudit struct {
	events []auditservice.StatusChangeEvent
}

func (f *fakeAudit) BookingStatusChanged(_ context.Context, event auditservice.StatusChangeEvent) {
	f.events = append(f.events, event)
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Тестовые данные

func testNow() time.Time {
	return time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
}

func testDate() time.Time {
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}

func confirmedBooking(id int64) *domain.Booking {
	return &domain.Booking{
		ID:          id,
		CustomerID:  7,
		ServiceID:   1,
		StaffID:     10,
		RoomID:      100,
		BookingDate: testDate(),
		StartTime:   types.TimeString("10:00"),
		EndTime:     types.TimeString("11:00"),
		Status:      domain.StatusConfirmed,
		ServiceName: "Классический массаж",
		TotalPrice:  3500,
	}
}

func newTestService(repo *fakeBookingRepo) (*Service, *fakeCache, *fakeAudit) {
	cache := &fakeCache{}
	audit := &fakeAudit{}
	catalog := &fakeCatalog{
		service: &domain.Service{
			ID: 1, Category: "massage", DurationMinutes: 60,
			MinRoomCapacity: 1, IsActive: true,
		},
		rooms: []*domain.Room{
			{ID: 100, BedCapacity: 1, IsActive: true},
		},
		staff: []*domain.StaffMember{
			{ID: 10, IsActive: true},
		},
	}

	svc := NewService(
		repo, catalog, fakeSchedules{}, cache, audit, fakeTxManager{},
		Settings{
			BusinessHoursStart:     "09:00",
			BusinessHoursEnd:       "19:00",
			MaxAdvanceBookingDays:  90,
			MinAdvanceBookingHours: 2,
		},
		fixedTime{now: testNow()}, nopLogger{},
	)

	return svc, cache, audit
}

// Тесты

func TestService_GetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		svc, _, _ := newTestService(newFakeBookingRepo(confirmedBooking(1)))

		got, err := svc.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "10:00", got.StartTime)
		assert.Equal(t, "confirmed", got.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, _, _ := newTestService(newFakeBookingRepo())

		_, err := svc.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_GetCustomerBookings(t *testing.T) {
	completed := confirmedBooking(2)
	completed.Status = domain.StatusCompleted

	svc, _, _ := newTestService(newFakeBookingRepo(confirmedBooking(1), completed))

	t.Run("AllStatuses", func(t *testing.T) {
		got, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{CustomerID: 7})
		require.NoError(t, err)
		assert.Len(t, got.Bookings, 2)
	})

	t.Run("FilteredByStatus", func(t *testing.T) {
		got, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
			CustomerID: 7,
			Status:     ptr.Ptr("completed"),
		})
		require.NoError(t, err)
		require.Len(t, got.Bookings, 1)
		assert.Equal(t, int64(2), got.Bookings[0].ID)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		_, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
			CustomerID: 7,
			Status:     ptr.Ptr("postponed"),
		})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("CancelsAndInvalidatesCache", func(t *testing.T) {
		repo := newFakeBookingRepo(confirmedBooking(1))
		svc, cache, audit := newTestService(repo)

		err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{
			ActorID:            7,
			CancellationReason: "изменились планы",
		})
		require.NoError(t, err)

		assert.Equal(t, []int64{1}, repo.cancelled)

		require.Len(t, cache.invalidated, 1)
		assert.Equal(t, testDate(), cache.invalidated[0])

		require.Len(t, audit.events, 1)
		assert.Equal(t, "confirmed", audit.events[0].OldStatus)
		assert.Equal(t, "cancelled", audit.events[0].NewStatus)
		assert.Equal(t, "изменились планы", audit.events[0].Reason)
	})

	t.Run("CompletedCannotBeCancelled", func(t *testing.T) {
		b := confirmedBooking(1)
		b.Status = domain.StatusCompleted
		svc, cache, _ := newTestService(newFakeBookingRepo(b))

		err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{ActorID: 7})
		assert.ErrorIs(t, err, ErrCannotCancel)
		assert.Empty(t, cache.invalidated)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, _, _ := newTestService(newFakeBookingRepo())

		err := svc.Cancel(context.Background(), 42, &models.CancelBookingRequest{ActorID: 7})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	t.Run("ValidTransition", func(t *testing.T) {
		repo := newFakeBookingRepo(confirmedBooking(1))
		svc, cache, audit := newTestService(repo)

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
			ActorID: 99,
			Status:  "in_progress",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.StatusInProgress, repo.statusUpdates[1])
		// Переход между активными статусами не меняет занятость
		assert.Empty(t, cache.invalidated)

		require.Len(t, audit.events, 1)
		assert.Equal(t, "in_progress", audit.events[0].NewStatus)
	})

	t.Run("NoShowFreesIntervalAndInvalidatesCache", func(t *testing.T) {
		repo := newFakeBookingRepo(confirmedBooking(1))
		svc, cache, _ := newTestService(repo)

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
			ActorID: 99,
			Status:  "no_show",
		})
		require.NoError(t, err)
		assert.Len(t, cache.invalidated, 1)
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		b := confirmedBooking(1)
		b.Status = domain.StatusCompleted
		svc, _, _ := newTestService(newFakeBookingRepo(b))

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
			ActorID: 99,
			Status:  "confirmed",
		})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("BackwardTransitionForbidden", func(t *testing.T) {
		b := confirmedBooking(1)
		b.Status = domain.StatusInProgress
		svc, _, _ := newTestService(newFakeBookingRepo(b))

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
			ActorID: 99,
			Status:  "pending",
		})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		svc, _, _ := newTestService(newFakeBookingRepo(confirmedBooking(1)))

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
			ActorID: 99,
			Status:  "postponed",
		})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("CancelViaStatusSetsCancelledAt", func(t *testing.T) {
		repo := newFakeBookingRepo(confirmedBooking(1))
		svc, _, _ := newTestService(repo)

		err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{
			ActorID: 99,
			Status:  "cancelled",
		})
		require.NoError(t, err)
		// Отмена идет через Cancel, а не UpdateStatus
		assert.Equal(t, []int64{1}, repo.cancelled)
		assert.Empty(t, repo.statusUpdates)
	})
}

func TestService_Reschedule(t *testing.T) {
	newDate := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

	t.Run("MovesBookingAndInvalidatesBothDates", func(t *testing.T) {
		repo := newFakeBookingRepo(confirmedBooking(1))
		svc, cache, _ := newTestService(repo)

		got, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
			ActorID:   7,
			Date:      newDate,
			StartTime: types.TimeString("14:00"),
		})
		require.NoError(t, err)

		assert.Equal(t, "2026-09-20", got.BookingDate)
		assert.Equal(t, "14:00", got.StartTime)
		assert.Equal(t, "15:00", got.EndTime)

		require.NotNil(t, repo.rescheduled)
		assert.Equal(t, types.TimeString("14:00"), repo.rescheduled.StartTime)

		require.Len(t, cache.invalidated, 2)
		assert.Equal(t, testDate(), cache.invalidated[0])
		assert.Equal(t, newDate, cache.invalidated[1])
	})

	t.Run("SameSlotAllowedViaExclusion", func(t *testing.T) {
		// Единственная пара (мастер, кабинет) занята самим бронированием;
		// перенос внутри собственного интервала должен пройти
		repo := newFakeBookingRepo(confirmedBooking(1))
		svc, _, _ := newTestService(repo)

		got, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
			ActorID:   7,
			Date:      testDate(),
			StartTime: types.TimeString("10:30"),
		})
		require.NoError(t, err)
		assert.Equal(t, "10:30", got.StartTime)
	})

	t.Run("RetriesOnceOnConflict", func(t *testing.T) {
		repo := newFakeBookingRepo(confirmedBooking(1))
		repo.rescheduleErrs = []error{bookingRepo.ErrSlotConflict, nil}
		svc, _, _ := newTestService(repo)

		_, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
			ActorID:   7,
			Date:      newDate,
			StartTime: types.TimeString("14:00"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, repo.rescheduleCall)
	})

	t.Run("BothAttemptsLose", func(t *testing.T) {
		repo := newFakeBookingRepo(confirmedBooking(1))
		repo.rescheduleErrs = []error{bookingRepo.ErrSlotConflict, bookingRepo.ErrSlotConflict}
		svc, cache, _ := newTestService(repo)

		_, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
			ActorID:   7,
			Date:      newDate,
			StartTime: types.TimeString("14:00"),
		})
		assert.ErrorIs(t, err, ErrRescheduleConflict)
		assert.Empty(t, cache.invalidated)
	})

	t.Run("CancelledCannotBeRescheduled", func(t *testing.T) {
		b := confirmedBooking(1)
		b.Status = domain.StatusCancelled
		svc, _, _ := newTestService(newFakeBookingRepo(b))

		_, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
			ActorID:   7,
			Date:      newDate,
			StartTime: types.TimeString("14:00"),
		})
		assert.ErrorIs(t, err, ErrCannotReschedule)
	})

	t.Run("DateInPast", func(t *testing.T) {
		svc, _, _ := newTestService(newFakeBookingRepo(confirmedBooking(1)))

		_, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
			ActorID:   7,
			Date:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			StartTime: types.TimeString("14:00"),
		})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("OutsideBusinessHours", func(t *testing.T) {
		svc, _, _ := newTestService(newFakeBookingRepo(confirmedBooking(1)))

		_, err := svc.Reschedule(context.Background(), 1, &models.RescheduleBookingRequest{
			ActorID:   7,
			Date:      newDate,
			StartTime: types.TimeString("18:30"),
		})
		assert.ErrorIs(t, err, ErrInvalidTimeSlot)
	})
}
