package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/pkg/types"
)

func testDate() time.Time {
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}

func schedule(staffID int64, start, end, status string) *domain.WorkSchedule {
	return &domain.WorkSchedule{
		StaffID:   staffID,
		WorkDate:  testDate(),
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
		Status:    domain.ScheduleStatus(status),
	}
}

func activeBooking(id, staffID, roomID int64, start, end string) *domain.Booking {
	return &domain.Booking{
		ID:          id,
		StaffID:     staffID,
		RoomID:      roomID,
		BookingDate: testDate(),
		StartTime:   types.TimeString(start),
		EndTime:     types.TimeString(end),
		Status:      domain.StatusConfirmed,
	}
}

func TestCalculator_DateSummary(t *testing.T) {
	calc := NewCalculator(Config{
		SlotGranularityMinutes: 30,
		BusinessHoursStart:     "09:00",
		BusinessHoursEnd:       "19:00",
	})

	t.Run("CountsSlotsFromBookableSchedules", func(t *testing.T) {
		schedules := []*domain.WorkSchedule{
			schedule(1, "09:00", "13:00", "available"),   // 8 слотов по 30 минут
			schedule(2, "10:00", "12:00", "available"),   // 4 слота
			schedule(3, "09:00", "19:00", "unavailable"), // не учитывается
		}
		bookings := []*domain.Booking{
			activeBooking(1, 1, 100, "10:00", "11:00"),
		}

		summary := calc.DateSummary(testDate(), schedules, bookings)

		assert.Equal(t, 12, summary.TotalSlots)
		assert.Equal(t, 1, summary.BookedSlots)
		assert.Equal(t, 11, summary.AvailableSlots)
		assert.True(t, summary.HasAvailability)
	})

	t.Run("CancelledBookingsNotCounted", func(t *testing.T) {
		schedules := []*domain.WorkSchedule{
			schedule(1, "09:00", "11:00", "available"),
		}
		cancelled := activeBooking(1, 1, 100, "09:00", "10:00")
		cancelled.Status = domain.StatusCancelled

		summary := calc.DateSummary(testDate(), schedules, []*domain.Booking{cancelled})

		assert.Equal(t, 0, summary.BookedSlots)
		assert.Equal(t, 4, summary.AvailableSlots)
	})

	t.Run("AvailableSlotsNeverNegative", func(t *testing.T) {
		schedules := []*domain.WorkSchedule{
			schedule(1, "09:00", "09:30", "available"), // 1 слот
		}
		bookings := []*domain.Booking{
			activeBooking(1, 1, 100, "09:00", "09:30"),
			activeBooking(2, 2, 101, "09:00", "09:30"),
		}

		summary := calc.DateSummary(testDate(), schedules, bookings)

		assert.Equal(t, 0, summary.AvailableSlots)
		assert.False(t, summary.HasAvailability)
	})

	t.Run("NoSchedulesMeansNoAvailability", func(t *testing.T) {
		summary := calc.DateSummary(testDate(), nil, nil)

		assert.Equal(t, 0, summary.TotalSlots)
		assert.False(t, summary.HasAvailability)
	})
}

func TestCalculator_TimeSlots(t *testing.T) {
	calc := NewCalculator(Config{
		SlotGranularityMinutes: 30,
		BusinessHoursStart:     "09:00",
		BusinessHoursEnd:       "12:00",
	})

	staff := []*domain.StaffMember{
		{ID: 1, IsActive: true, Specializations: []string{"massage"}},
		{ID: 2, IsActive: true}, // универсал
	}
	rooms := []*domain.Room{
		{ID: 100, BedCapacity: 1, IsActive: true},
		{ID: 101, BedCapacity: 2, IsActive: true},
	}
	schedules := []*domain.WorkSchedule{
		schedule(1, "09:00", "12:00", "available"),
		schedule(2, "09:00", "12:00", "available"),
	}

	t.Run("SlotMustFitBeforeClosing", func(t *testing.T) {
		slots, err := calc.TimeSlots(TimeSlotsInput{
			Date:            testDate(),
			DurationMinutes: 60,
			Staff:           staff,
			Rooms:           rooms,
			Schedules:       schedules,
		})
		require.NoError(t, err)

		// Старты с шагом 30 минут: 09:00 .. 11:00; процедура на час
		// должна закончиться к 12:00
		require.Len(t, slots, 5)
		assert.Equal(t, "09:00", slots[0].StartTime.String())
		assert.Equal(t, "11:00", slots[len(slots)-1].StartTime.String())
	})

	t.Run("BookingReducesAvailability", func(t *testing.T) {
		bookings := []*domain.Booking{
			activeBooking(1, 1, 100, "09:00", "10:00"),
		}

		slots, err := calc.TimeSlots(TimeSlotsInput{
			Date:            testDate(),
			DurationMinutes: 60,
			Staff:           staff,
			Rooms:           rooms,
			Schedules:       schedules,
			Bookings:        bookings,
		})
		require.NoError(t, err)

		first := slots[0]
		assert.Equal(t, "09:00", first.StartTime.String())
		assert.Equal(t, 1, first.AvailableStaffCount)
		assert.Equal(t, 1, first.AvailableRoomCount)
		assert.True(t, first.Available)

		// 10:00 свободен полностью - бронирование закончилось
		var at10 *domain.TimeSlot
		for i := range slots {
			if slots[i].StartTime.String() == "10:00" {
				at10 = &slots[i]
			}
		}
		require.NotNil(t, at10)
		assert.Equal(t, 2, at10.AvailableStaffCount)
		assert.Equal(t, 2, at10.AvailableRoomCount)
	})

	t.Run("SuggestedPairIsLowestIDs", func(t *testing.T) {
		slots, err := calc.TimeSlots(TimeSlotsInput{
			Date:            testDate(),
			DurationMinutes: 60,
			Staff:           staff,
			Rooms:           rooms,
			Schedules:       schedules,
		})
		require.NoError(t, err)

		first := slots[0]
		require.NotNil(t, first.SuggestedStaffID)
		require.NotNil(t, first.SuggestedRoomID)
		assert.Equal(t, int64(1), *first.SuggestedStaffID)
		assert.Equal(t, int64(100), *first.SuggestedRoomID)
	})

	t.Run("ServiceCategoryFiltersStaff", func(t *testing.T) {
		service := &domain.Service{
			ID:              1,
			Category:        "facial",
			DurationMinutes: 60,
			IsActive:        true,
		}

		slots, err := calc.TimeSlots(TimeSlotsInput{
			Date:      testDate(),
			Service:   service,
			Staff:     staff,
			Rooms:     rooms,
			Schedules: schedules,
		})
		require.NoError(t, err)

		// Мастер 1 специализируется на massage, мастер 2 универсал
		first := slots[0]
		assert.Equal(t, 1, first.AvailableStaffCount)
		assert.Equal(t, int64(2), *first.SuggestedStaffID)
	})

	t.Run("DrainageServiceFiltersRooms", func(t *testing.T) {
		service := &domain.Service{
			ID:                          2,
			Category:                    "massage",
			DurationMinutes:             60,
			RequiresSpecializedDrainage: true,
			IsActive:                    true,
		}

		slots, err := calc.TimeSlots(TimeSlotsInput{
			Date:      testDate(),
			Service:   service,
			Staff:     staff,
			Rooms:     rooms,
			Schedules: schedules,
		})
		require.NoError(t, err)

		// Ни один кабинет не оснащен сливом
		for _, slot := range slots {
			assert.False(t, slot.Available)
			assert.Equal(t, 0, slot.AvailableRoomCount)
		}
	})

	t.Run("StaffFilterLimitsCalculation", func(t *testing.T) {
		staffID := int64(2)
		slots, err := calc.TimeSlots(TimeSlotsInput{
			Date:            testDate(),
			DurationMinutes: 60,
			Staff:           staff,
			Rooms:           rooms,
			Schedules:       schedules,
			StaffFilter:     &staffID,
		})
		require.NoError(t, err)

		first := slots[0]
		assert.Equal(t, 1, first.AvailableStaffCount)
		assert.Equal(t, int64(2), *first.SuggestedStaffID)
	})

	t.Run("NoScheduleMeansNoStaff", func(t *testing.T) {
		slots, err := calc.TimeSlots(TimeSlotsInput{
			Date:            testDate(),
			DurationMinutes: 60,
			Staff:           staff,
			Rooms:           rooms,
			Schedules:       nil,
		})
		require.NoError(t, err)

		for _, slot := range slots {
			assert.Equal(t, 0, slot.AvailableStaffCount)
			assert.False(t, slot.Available)
		}
	})
}
