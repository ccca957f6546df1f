package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/infra/storage/booking"
	"github.com/spaflow/booking-engine/internal/infra/storage/catalog"
	"github.com/spaflow/booking-engine/internal/integrations/auditservice"
	"github.com/spaflow/booking-engine/pkg/types"
)

// Фейки зависимостей

type fakeBookingRepo struct {
	bookings []*domain.Booking

	createCalls int
	// createErrs ошибки для последовательных вызовов Create; nil = успех
	createErrs []error
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	call := f.createCalls
	f.createCalls++

	if call < len(f.createErrs) && f.createErrs[call] != nil {
		return nil, f.createErrs[call]
	}

	created := *b
	created.ID = int64(1000 + call)
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.bookings = append(f.bookings, &created)
	return &created, nil
}

func (f *fakeBookingRepo) GetForDate(_ context.Context, _ time.Time, _ domain.BookingsFilter) ([]*domain.Booking, error) {
	return f.bookings, nil
}

type fakeCatalog struct {
	service *domain.Service
	rooms   []*domain.Room
	staff   []*domain.StaffMember
}

func (f *fakeCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	if f.service == nil || f.service.ID != id {
		return nil, catalog.ErrServiceNotFound
	}
	return f.service, nil
}

func (f *fakeCatalog) ListActiveRooms(_ context.Context) ([]*domain.Room, error) {
	return f.rooms, nil
}

func (f *fakeCatalog) ListActiveStaff(_ context.Context) ([]*domain.StaffMember, error) {
	return f.staff, nil
}

type fakeSchedules struct {
	schedules []*domain.WorkSchedule
}

func (f *fakeSchedules) GetForDate(_ context.Context, _ time.Time) ([]*domain.WorkSchedule, error) {
	return f.schedules, nil
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

func bookingDate() time.Time {
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}

func testNow() time.Time {
	return time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
}

func testSettings() Settings {
	return Settings{
		BusinessHoursStart:     "09:00",
		BusinessHoursEnd:       "19:00",
		MaxAdvanceBookingDays:  90,
		MinAdvanceBookingHours: 2,
	}
}

func testService() *domain.Service {
	return &domain.Service{
		ID:              1,
		Name:            "Классический массаж",
		Category:        "massage",
		DurationMinutes: 60,
		Price:           3500,
		MinRoomCapacity: 1,
		IsActive:        true,
	}
}

func newTestEnv() (*UseCase, *fakeBookingRepo, *fakeCache, *fakeAudit) {
	repo := &fakeBookingRepo{}
	catalog := &fakeCatalog{
		service: testService(),
		rooms: []*domain.Room{
			{ID: 100, BedCapacity: 1, IsActive: true},
			{ID: 101, BedCapacity: 2, IsActive: true},
		},
		staff: []*domain.StaffMember{
			{ID: 10, IsActive: true},
			{ID: 11, IsActive: true},
		},
	}
	schedules := &fakeSchedules{
		schedules: []*domain.WorkSchedule{
			{StaffID: 10, WorkDate: bookingDate(), StartTime: "09:00", EndTime: "19:00", Status: domain.ScheduleAvailable},
			{StaffID: 11, WorkDate: bookingDate(), StartTime: "09:00", EndTime: "19:00", Status: domain.ScheduleAvailable},
		},
	}
	cache := &fakeCache{}
	audit := &fakeAudit{}

	uc := NewUseCase(
		repo, catalog, schedules, cache, audit,
		fakeTxManager{}, nil, testSettings(),
		fixedTime{now: testNow()}, nopLogger{},
	)

	return uc, repo, cache, audit
}

func validRequest() *Request {
	return &Request{
		CustomerID: 7,
		ServiceID:  1,
		Date:       bookingDate(),
		StartTime:  types.TimeString("10:00"),
	}
}

// Тесты

func TestExecute_Success(t *testing.T) {
	uc, repo, cache, audit := newTestEnv()

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(7), resp.CustomerID)
	assert.Equal(t, int64(10), resp.StaffID)
	assert.Equal(t, int64(100), resp.RoomID)
	assert.Equal(t, "10:00", resp.StartTime.String())
	assert.Equal(t, "11:00", resp.EndTime.String())
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, "Классический массаж", resp.ServiceName)
	assert.Equal(t, 3500.0, resp.TotalPrice)

	assert.Equal(t, 1, repo.createCalls)

	require.Len(t, cache.invalidated, 1)
	assert.Equal(t, bookingDate(), cache.invalidated[0])

	require.Len(t, audit.events, 1)
	assert.Equal(t, string(domain.StatusConfirmed), audit.events[0].NewStatus)
	assert.Equal(t, int64(7), audit.events[0].ActorID)
}

func TestExecute_ExistingBookingShiftsAllocation(t *testing.T) {
	uc, repo, _, _ := newTestEnv()

	// Первое бронирование занимает мастера 10 и кабинет 100
	_, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Второе на тот же слот получает следующую пару
	second, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(11), second.StaffID)
	assert.Equal(t, int64(101), second.RoomID)

	assert.Equal(t, 2, repo.createCalls)
}

func TestExecute_RetriesOnceOnConflict(t *testing.T) {
	t.Run("SecondAttemptWins", func(t *testing.T) {
		uc, repo, _, _ := newTestEnv()
		repo.createErrs = []error{booking.ErrSlotConflict, nil}

		resp, err := uc.Execute(context.Background(), validRequest())
		require.NoError(t, err)
		assert.NotZero(t, resp.ID)
		assert.Equal(t, 2, repo.createCalls)
	})

	t.Run("BothAttemptsLose", func(t *testing.T) {
		uc, repo, cache, audit := newTestEnv()
		repo.createErrs = []error{booking.ErrSlotConflict, booking.ErrSerialization}

		_, err := uc.Execute(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrBookingConflict)
		assert.Equal(t, 2, repo.createCalls)

		// Проигранная гонка не инвалидирует кеш и не шлет событий
		assert.Empty(t, cache.invalidated)
		assert.Empty(t, audit.events)
	})
}

func TestExecute_SlotFullyBooked(t *testing.T) {
	uc, _, _, _ := newTestEnv()
	ctx := context.Background()

	// Занимаем обе пары (мастер, кабинет)
	_, err := uc.Execute(ctx, validRequest())
	require.NoError(t, err)
	_, err = uc.Execute(ctx, validRequest())
	require.NoError(t, err)

	// Третьему не хватает ресурсов
	_, err = uc.Execute(ctx, validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRoomUnavailable) || errors.Is(err, ErrStaffUnavailable),
		"expected room or staff unavailability, got %v", err)
}

// racingBookingRepo потокобезопасный фейк: Create атомарно проверяет
// конфликт и вставляет, как это делает БД с exclusion-ограничениями
type racingBookingRepo struct {
	mu       sync.Mutex
	nextID   int64
	bookings []*domain.Booking
}

func (f *racingBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.bookings {
		if existing.Status == domain.StatusCancelled || existing.Status == domain.StatusNoShow {
			continue
		}
		if existing.StaffID != b.StaffID && existing.RoomID != b.RoomID {
			continue
		}
		if existing.StartTime.IsBefore(b.EndTime) && b.StartTime.IsBefore(existing.EndTime) {
			return nil, booking.ErrSlotConflict
		}
	}

	f.nextID++
	created := *b
	created.ID = f.nextID
	f.bookings = append(f.bookings, &created)
	return &created, nil
}

func (f *racingBookingRepo) GetForDate(_ context.Context, _ time.Time, _ domain.BookingsFilter) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := make([]*domain.Booking, len(f.bookings))
	copy(snapshot, f.bookings)
	return snapshot, nil
}

func TestExecute_ConcurrentRequestsSingleWinner(t *testing.T) {
	repo := &racingBookingRepo{}
	catalog := &fakeCatalog{
		service: testService(),
		rooms:   []*domain.Room{{ID: 100, BedCapacity: 1, IsActive: true}},
		staff:   []*domain.StaffMember{{ID: 10, IsActive: true}},
	}
	schedules := &fakeSchedules{
		schedules: []*domain.WorkSchedule{
			{StaffID: 10, WorkDate: bookingDate(), StartTime: "09:00", EndTime: "19:00", Status: domain.ScheduleAvailable},
		},
	}

	uc := NewUseCase(
		repo, catalog, schedules, &fakeCache{}, &fakeAudit{},
		fakeTxManager{}, nil, testSettings(),
		fixedTime{now: testNow()}, nopLogger{},
	)

	const workers = 8
	results := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), validRequest())
			results[i] = err
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		assert.True(t,
			errors.Is(err, ErrBookingConflict) ||
				errors.Is(err, ErrRoomUnavailable) ||
				errors.Is(err, ErrStaffUnavailable),
			"loser must fail with conflict or unavailability, got %v", err)
	}
	assert.Equal(t, 1, winners)
	assert.Len(t, repo.bookings, 1)
}

func TestExecute_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("DateInPast", func(t *testing.T) {
		uc, _, _, _ := newTestEnv()
		req := validRequest()
		req.Date = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("DateBeyondHorizon", func(t *testing.T) {
		uc, _, _, _ := newTestEnv()
		req := validRequest()
		req.Date = testNow().AddDate(0, 0, 91)

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})

	t.Run("TooLateToBook", func(t *testing.T) {
		uc, _, _, _ := newTestEnv()
		req := validRequest()
		// now = 2026-09-10 12:00, порог 2 часа: слот 13:00 того же дня уже недоступен
		req.Date = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
		req.StartTime = types.TimeString("13:00")

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrTooLateToBook)
	})

	t.Run("OutsideBusinessHours", func(t *testing.T) {
		uc, _, _, _ := newTestEnv()
		req := validRequest()
		req.StartTime = types.TimeString("18:30") // конец в 19:30, позже закрытия

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidTimeSlot)
	})

	t.Run("ServiceInactive", func(t *testing.T) {
		uc, _, _, _ := newTestEnv()
		inactive := testService()
		inactive.IsActive = false
		uc.catalog.(*fakeCatalog).service = inactive

		_, err := uc.Execute(ctx, validRequest())
		assert.ErrorIs(t, err, ErrServiceInactive)
	})

	t.Run("ServiceNotFound", func(t *testing.T) {
		uc, _, _, _ := newTestEnv()
		req := validRequest()
		req.ServiceID = 999

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("NonPositiveCustomerID", func(t *testing.T) {
		uc, _, _, _ := newTestEnv()
		req := validRequest()
		req.CustomerID = 0

		_, err := uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
