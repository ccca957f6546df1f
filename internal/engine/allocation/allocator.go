// Package allocation подбирает пару (кабинет, мастер) для бронирования
// по упорядоченному списку бизнес-правил спа-салона
package allocation

import (
	"fmt"
	"sort"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/engine/conflict"
	"github.com/spaflow/booking-engine/pkg/types"
)

// Input снапшот данных для подбора ресурсов на интервал [StartTime, EndTime)
type Input struct {
	Service   *domain.Service
	StartTime types.TimeString
	EndTime   types.TimeString

	// PartySize количество гостей (по умолчанию 1; >=2 требует кабинет на двоих)
	PartySize int

	Rooms     []*domain.Room
	Staff     []*domain.StaffMember
	Schedules []*domain.WorkSchedule
	Bookings  []*domain.Booking

	// ExcludeBookingID исключает бронирование из проверок конфликтов
	// (используется при переносе существующего бронирования)
	ExcludeBookingID *int64
}

// Allocate выбирает пару (кабинет, мастер) для услуги
//
// Порядок правил для кабинета (применяется первое подходящее):
//  1. Услуга требует специализированный слив → только кабинеты со сливом
//  2. Парная услуга или partySize >= 2 → кабинеты на два места и больше,
//     сначала со сливом (более оснащенные), затем по возрастанию вместимости
//  3. Обычная услуга → все свободные кабинеты по возрастанию вместимости,
//     чтобы многоместные оставались для парных процедур
//
// Ограничивающий список AllowedRoomIDs услуги пересекается с кандидатами
// до упорядочивания. Кабинет и мастер выбираются независимо: между ними
// нет перекрестных ограничений, поэтому берется первая подходящая пара
// в детерминированном порядке (наименьший ID)
func Allocate(in Input) (*domain.Allocation, error) {
	if in.Service == nil {
		return nil, fmt.Errorf("%w: service is required", ErrInvalidInput)
	}
	if err := validateInterval(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	partySize := in.PartySize
	if partySize <= 0 {
		partySize = 1
	}

	room, err := selectRoom(in, partySize)
	if err != nil {
		return nil, err
	}

	staff, err := selectStaff(in)
	if err != nil {
		return nil, err
	}

	return &domain.Allocation{RoomID: room.ID, StaffID: staff.ID}, nil
}

func validateInterval(start, end types.TimeString) error {
	if err := start.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := end.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !start.IsBefore(end) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}
	return nil
}

// selectRoom выбирает кабинет по упорядоченным правилам
func selectRoom(in Input, partySize int) (*domain.Room, error) {
	// Базовые кандидаты: активные, разрешенные услугой, свободные в интервале
	candidates := make([]*domain.Room, 0, len(in.Rooms))
	for _, room := range in.Rooms {
		if !room.IsActive {
			continue
		}
		if !in.Service.AllowsRoom(room.ID) {
			continue
		}
		if conflict.HasForRoom(in.Bookings, room.ID, in.StartTime, in.EndTime, in.ExcludeBookingID) {
			continue
		}
		candidates = append(candidates, room)
	}

	switch {
	case in.Service.RequiresSpecializedDrainage:
		// Правило 1: только кабинеты со специализированным сливом
		candidates = filterRooms(candidates, func(r *domain.Room) bool {
			return r.HasSpecializedDrainage && r.BedCapacity >= in.Service.MinRoomCapacity && r.FitsCapacity(partySize)
		})
		sortRooms(candidates, byID)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: no free room with specialized drainage for service %d",
				ErrRoomUnavailable, in.Service.ID)
		}

	case partySize >= 2 || in.Service.IsCouples():
		// Правило 2: кабинеты на двоих и больше; сначала со сливом,
		// затем по возрастанию вместимости
		candidates = filterRooms(candidates, func(r *domain.Room) bool {
			return r.BedCapacity >= 2 && r.BedCapacity >= in.Service.MinRoomCapacity && r.FitsCapacity(partySize)
		})
		sortRooms(candidates, byDrainageThenCapacity)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: no free room with capacity >= 2 for service %d",
				ErrRoomUnavailable, in.Service.ID)
		}

	default:
		// Правило 3: любой свободный кабинет, наименьшая вместимость первой,
		// чтобы многоместные кабинеты оставались для парных процедур
		candidates = filterRooms(candidates, func(r *domain.Room) bool {
			return r.BedCapacity >= in.Service.MinRoomCapacity
		})
		sortRooms(candidates, byCapacity)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: no free room for service %d", ErrRoomUnavailable, in.Service.ID)
		}
	}

	return candidates[0], nil
}

// selectStaff выбирает мастера: активный, подходящий по специализации,
// расписание available покрывает интервал, нет конфликтующих бронирований
// Детерминированный выбор - наименьший ID
func selectStaff(in Input) (*domain.StaffMember, error) {
	var selected *domain.StaffMember

	for _, member := range in.Staff {
		if !member.IsActive {
			continue
		}
		if !member.CanPerform(in.Service.Category) {
			continue
		}
		if !hasCoveringSchedule(in.Schedules, member.ID, in.StartTime, in.EndTime) {
			continue
		}
		if conflict.HasForStaff(in.Bookings, member.ID, in.StartTime, in.EndTime, in.ExcludeBookingID) {
			continue
		}
		if selected == nil || member.ID < selected.ID {
			selected = member
		}
	}

	if selected == nil {
		return nil, fmt.Errorf("%w: no free staff member for service %d in interval %s-%s",
			ErrStaffUnavailable, in.Service.ID, in.StartTime, in.EndTime)
	}

	return selected, nil
}

func hasCoveringSchedule(schedules []*domain.WorkSchedule, staffID int64, start, end types.TimeString) bool {
	for _, entry := range schedules {
		if entry.StaffID != staffID {
			continue
		}
		if !entry.IsBookable() {
			continue
		}
		if entry.Covers(start, end) {
			return true
		}
	}
	return false
}

func filterRooms(rooms []*domain.Room, keep func(*domain.Room) bool) []*domain.Room {
	filtered := rooms[:0]
	for _, r := range rooms {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Порядки предпочтения кабинетов; ID всегда финальный tie-break
// для воспроизводимости результата

func byID(a, b *domain.Room) bool {
	return a.ID < b.ID
}

func byCapacity(a, b *domain.Room) bool {
	if a.BedCapacity != b.BedCapacity {
		return a.BedCapacity < b.BedCapacity
	}
	return a.ID < b.ID
}

func byDrainageThenCapacity(a, b *domain.Room) bool {
	if a.HasSpecializedDrainage != b.HasSpecializedDrainage {
		return a.HasSpecializedDrainage
	}
	if a.BedCapacity != b.BedCapacity {
		return a.BedCapacity < b.BedCapacity
	}
	return a.ID < b.ID
}

func sortRooms(rooms []*domain.Room, less func(a, b *domain.Room) bool) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return less(rooms[i], rooms[j])
	})
}
