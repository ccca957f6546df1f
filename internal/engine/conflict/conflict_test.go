package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/pkg/types"
)

func booking(id, staffID, roomID int64, start, end string, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:        id,
		StaffID:   staffID,
		RoomID:    roomID,
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
		Status:    status,
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"PartialOverlap", "10:00", "11:00", "10:30", "11:30", true},
		{"FullContainment", "10:00", "12:00", "10:30", "11:00", true},
		{"SameInterval", "10:00", "11:00", "10:00", "11:00", true},
		{"BackToBack", "10:00", "11:00", "11:00", "12:00", false},
		{"BackToBackReversed", "11:00", "12:00", "10:00", "11:00", false},
		{"Disjoint", "09:00", "10:00", "14:00", "15:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(
				types.TimeString(tc.aStart), types.TimeString(tc.aEnd),
				types.TimeString(tc.bStart), types.TimeString(tc.bEnd),
			)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHasForRoom(t *testing.T) {
	bookings := []*domain.Booking{
		booking(1, 10, 100, "10:00", "11:00", domain.StatusConfirmed),
		booking(2, 11, 101, "10:00", "11:00", domain.StatusCancelled),
	}

	t.Run("ConflictWithActiveBooking", func(t *testing.T) {
		assert.True(t, HasForRoom(bookings, 100, types.TimeString("10:30"), types.TimeString("11:30"), nil))
	})

	t.Run("CancelledBookingFreesInterval", func(t *testing.T) {
		assert.False(t, HasForRoom(bookings, 101, types.TimeString("10:30"), types.TimeString("11:30"), nil))
	})

	t.Run("OtherRoomDoesNotConflict", func(t *testing.T) {
		assert.False(t, HasForRoom(bookings, 102, types.TimeString("10:00"), types.TimeString("11:00"), nil))
	})

	t.Run("BackToBackDoesNotConflict", func(t *testing.T) {
		assert.False(t, HasForRoom(bookings, 100, types.TimeString("11:00"), types.TimeString("12:00"), nil))
	})

	t.Run("ExcludedBookingIgnored", func(t *testing.T) {
		excludeID := int64(1)
		assert.False(t, HasForRoom(bookings, 100, types.TimeString("10:00"), types.TimeString("11:00"), &excludeID))
	})
}

func TestHasForStaff(t *testing.T) {
	bookings := []*domain.Booking{
		booking(1, 10, 100, "10:00", "11:00", domain.StatusConfirmed),
		booking(2, 10, 101, "14:00", "15:00", domain.StatusNoShow),
	}

	t.Run("ConflictWithActiveBooking", func(t *testing.T) {
		assert.True(t, HasForStaff(bookings, 10, types.TimeString("10:30"), types.TimeString("11:00"), nil))
	})

	t.Run("NoShowFreesInterval", func(t *testing.T) {
		assert.False(t, HasForStaff(bookings, 10, types.TimeString("14:00"), types.TimeString("15:00"), nil))
	})
}

func TestFindForRoom(t *testing.T) {
	bookings := []*domain.Booking{
		booking(1, 10, 100, "10:00", "11:00", domain.StatusConfirmed),
		booking(2, 11, 100, "10:30", "11:30", domain.StatusPending),
		booking(3, 12, 100, "12:00", "13:00", domain.StatusConfirmed),
	}

	found := FindForRoom(bookings, 100, types.TimeString("10:45"), types.TimeString("11:15"), nil)
	assert.Len(t, found, 2)
}
