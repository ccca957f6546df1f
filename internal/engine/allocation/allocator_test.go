package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaflow/booking-engine/internal/domain"
)

func testDate() time.Time {
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}

func fullDaySchedules(staffIDs ...int64) []*domain.WorkSchedule {
	schedules := make([]*domain.WorkSchedule, 0, len(staffIDs))
	for _, id := range staffIDs {
		schedules = append(schedules, &domain.WorkSchedule{
			StaffID:   id,
			WorkDate:  testDate(),
			StartTime: "09:00",
			EndTime:   "19:00",
			Status:    domain.ScheduleAvailable,
		})
	}
	return schedules
}

func massageService() *domain.Service {
	return &domain.Service{
		ID:              1,
		Name:            "Классический массаж",
		Category:        "massage",
		DurationMinutes: 60,
		MinRoomCapacity: 1,
		IsActive:        true,
	}
}

func testRooms() []*domain.Room {
	return []*domain.Room{
		{ID: 100, BedCapacity: 1, IsActive: true},
		{ID: 101, BedCapacity: 2, IsActive: true},
		{ID: 102, BedCapacity: 2, HasSpecializedDrainage: true, IsActive: true},
	}
}

func testStaff() []*domain.StaffMember {
	return []*domain.StaffMember{
		{ID: 10, IsActive: true, Specializations: []string{"massage"}},
		{ID: 11, IsActive: true}, // универсал
	}
}

func TestAllocate_RoomRules(t *testing.T) {
	t.Run("SingleServicePrefersSmallestRoom", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Service:   massageService(),
			StartTime: "10:00",
			EndTime:   "11:00",
			Rooms:     testRooms(),
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(100), alloc.RoomID)
		assert.Equal(t, int64(10), alloc.StaffID)
	})

	t.Run("DrainageServiceTakesDrainageRoomOnly", func(t *testing.T) {
		service := massageService()
		service.RequiresSpecializedDrainage = true

		alloc, err := Allocate(Input{
			Service:   service,
			StartTime: "10:00",
			EndTime:   "11:00",
			Rooms:     testRooms(),
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(102), alloc.RoomID)
	})

	t.Run("DrainageRoomBusyMeansUnavailable", func(t *testing.T) {
		service := massageService()
		service.RequiresSpecializedDrainage = true

		busy := []*domain.Booking{{
			ID:        1,
			StaffID:   99,
			RoomID:    102,
			StartTime: "10:00",
			EndTime:   "11:00",
			Status:    domain.StatusConfirmed,
		}}

		_, err := Allocate(Input{
			Service:   service,
			StartTime: "10:30",
			EndTime:   "11:30",
			Rooms:     testRooms(),
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
			Bookings:  busy,
		})
		assert.ErrorIs(t, err, ErrRoomUnavailable)
	})

	t.Run("CouplesServicePrefersDrainageThenCapacity", func(t *testing.T) {
		service := massageService()
		service.MinRoomCapacity = 2

		alloc, err := Allocate(Input{
			Service:   service,
			StartTime: "10:00",
			EndTime:   "11:00",
			Rooms:     testRooms(),
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
		})
		require.NoError(t, err)
		// Кабинеты на двоих: 101 и 102; со сливом приоритетнее
		assert.Equal(t, int64(102), alloc.RoomID)
	})

	t.Run("PartySizeTwoRequiresBigRoom", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Service:   massageService(),
			StartTime: "10:00",
			EndTime:   "11:00",
			PartySize: 2,
			Rooms:     testRooms(),
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
		})
		require.NoError(t, err)
		assert.NotEqual(t, int64(100), alloc.RoomID)
	})

	t.Run("AllowedRoomIDsRestrictsCandidates", func(t *testing.T) {
		service := massageService()
		service.AllowedRoomIDs = []int64{101}

		alloc, err := Allocate(Input{
			Service:   service,
			StartTime: "10:00",
			EndTime:   "11:00",
			Rooms:     testRooms(),
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(101), alloc.RoomID)
	})

	t.Run("InactiveRoomSkipped", func(t *testing.T) {
		rooms := []*domain.Room{
			{ID: 100, BedCapacity: 1, IsActive: false},
			{ID: 101, BedCapacity: 2, IsActive: true},
		}

		alloc, err := Allocate(Input{
			Service:   massageService(),
			StartTime: "10:00",
			EndTime:   "11:00",
			Rooms:     rooms,
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(101), alloc.RoomID)
	})
}

func TestAllocate_StaffRules(t *testing.T) {
	t.Run("LowestIDAmongQualified", func(t *testing.T) {
		alloc, err := Allocate(Input{
			Service:   massageService(),
			StartTime: "10:00",
			EndTime:   "11:00",
			Rooms:     testRooms(),
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), alloc.StaffID)
	})

	t.Run("SpecializationMismatchSkipsStaff", func(t *testing.T) {
		service := massageService()
		service.Category = "facial"

		alloc, err := Allocate(Input{
			Service:   service,
			StartTime: "10:00",
			EndTime:   "11:00",
			Rooms:     testRooms(),
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
		})
		require.NoError(t, err)
		// Мастер 10 умеет только massage, универсал 11 подходит
		assert.Equal(t, int64(11), alloc.StaffID)
	})

	t.Run("ScheduleMustCoverWholeInterval", func(t *testing.T) {
		shortShift := []*domain.WorkSchedule{{
			StaffID:   10,
			WorkDate:  testDate(),
			StartTime: "09:00",
			EndTime:   "10:30",
			Status:    domain.ScheduleAvailable,
		}}

		_, err := Allocate(Input{
			Service:   massageService(),
			StartTime: "10:00",
			EndTime:   "11:00",
			Rooms:     testRooms(),
			Staff:     []*domain.StaffMember{{ID: 10, IsActive: true}},
			Schedules: shortShift,
		})
		assert.ErrorIs(t, err, ErrStaffUnavailable)
	})

	t.Run("BusyStaffSkipped", func(t *testing.T) {
		busy := []*domain.Booking{{
			ID:        1,
			StaffID:   10,
			RoomID:    101,
			StartTime: "10:00",
			EndTime:   "11:00",
			Status:    domain.StatusConfirmed,
		}}

		alloc, err := Allocate(Input{
			Service:   massageService(),
			StartTime: "10:30",
			EndTime:   "11:30",
			Rooms:     testRooms(),
			Staff:     testStaff(),
			Schedules: fullDaySchedules(10, 11),
			Bookings:  busy,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(11), alloc.StaffID)
	})

	t.Run("NonBookableScheduleSkipped", func(t *testing.T) {
		onBreak := []*domain.WorkSchedule{{
			StaffID:   10,
			WorkDate:  testDate(),
			StartTime: "09:00",
			EndTime:   "19:00",
			Status:    domain.ScheduleBreak,
		}}

		_, err := Allocate(Input{
			Service:   massageService(),
			StartTime: "10:00",
			EndTime:   "11:00",
			Rooms:     testRooms(),
			Staff:     []*domain.StaffMember{{ID: 10, IsActive: true}},
			Schedules: onBreak,
		})
		assert.ErrorIs(t, err, ErrStaffUnavailable)
	})
}

func TestAllocate_Reschedule(t *testing.T) {
	t.Run("OwnBookingExcludedFromConflicts", func(t *testing.T) {
		ownID := int64(42)
		own := []*domain.Booking{{
			ID:        ownID,
			StaffID:   10,
			RoomID:    100,
			StartTime: "10:00",
			EndTime:   "11:00",
			Status:    domain.StatusConfirmed,
		}}

		alloc, err := Allocate(Input{
			Service:          massageService(),
			StartTime:        "10:30",
			EndTime:          "11:30",
			Rooms:            testRooms(),
			Staff:            testStaff(),
			Schedules:        fullDaySchedules(10, 11),
			Bookings:         own,
			ExcludeBookingID: &ownID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), alloc.StaffID)
		assert.Equal(t, int64(100), alloc.RoomID)
	})
}

func TestAllocate_Validation(t *testing.T) {
	t.Run("NilService", func(t *testing.T) {
		_, err := Allocate(Input{StartTime: "10:00", EndTime: "11:00"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		_, err := Allocate(Input{
			Service:   massageService(),
			StartTime: "11:00",
			EndTime:   "10:00",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
