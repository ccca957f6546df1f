// Package availability вычисляет сводки доступности по датам и по временным слотам
// Работает над снапшотами данных (расписания, бронирования, каталоги),
// которые загружают вызывающие use cases; сам пакет не ходит в хранилища
package availability

import (
	"fmt"
	"time"

	"github.com/spaflow/booking-engine/internal/domain"
	"github.com/spaflow/booking-engine/internal/engine/conflict"
	"github.com/spaflow/booking-engine/pkg/types"
)

// Config параметры дискретизации рабочего дня
type Config struct {
	SlotGranularityMinutes int
	BusinessHoursStart     types.TimeString
	BusinessHoursEnd       types.TimeString
}

// Calculator вычисляет доступность слотов
type Calculator struct {
	cfg Config
}

// NewCalculator создает калькулятор доступности
// Незаполненные параметры конфигурации заменяются дефолтными
func NewCalculator(cfg Config) *Calculator {
	if cfg.SlotGranularityMinutes <= 0 {
		cfg.SlotGranularityMinutes = domain.DefaultSlotGranularityMinutes
	}
	if cfg.BusinessHoursStart.IsZero() {
		cfg.BusinessHoursStart = types.TimeString(domain.DefaultBusinessHoursStart)
	}
	if cfg.BusinessHoursEnd.IsZero() {
		cfg.BusinessHoursEnd = types.TimeString(domain.DefaultBusinessHoursEnd)
	}
	return &Calculator{cfg: cfg}
}

// DateSummary вычисляет сводку доступности на одну дату
// totalSlots = сумма по интервалам расписания со статусом available:
// floor(длительность интервала / гранулярность слота)
// bookedSlots = количество активных бронирований на дату
func (c *Calculator) DateSummary(
	date time.Time,
	schedules []*domain.WorkSchedule,
	bookings []*domain.Booking,
) domain.DateAvailabilitySummary {
	totalSlots := 0
	for _, entry := range schedules {
		if !entry.IsBookable() {
			continue
		}
		totalSlots += entry.DurationMinutes() / c.cfg.SlotGranularityMinutes
	}

	bookedSlots := 0
	for _, b := range bookings {
		if b.IsActive() {
			bookedSlots++
		}
	}

	availableSlots := totalSlots - bookedSlots
	if availableSlots < 0 {
		availableSlots = 0
	}

	return domain.DateAvailabilitySummary{
		Date:            date,
		TotalSlots:      totalSlots,
		BookedSlots:     bookedSlots,
		AvailableSlots:  availableSlots,
		HasAvailability: availableSlots > 0,
	}
}

// TimeSlotsInput снапшот данных для расчета доступности слотов на дату
type TimeSlotsInput struct {
	Date time.Time

	// Service услуга, для которой считается доступность
	// nil = доступность без привязки к услуге (длительность по умолчанию,
	// проверки совместимости кабинета не применяются)
	Service *domain.Service

	// DurationMinutes длительность, если услуга не указана
	DurationMinutes int

	Staff     []*domain.StaffMember
	Rooms     []*domain.Room
	Schedules []*domain.WorkSchedule
	Bookings  []*domain.Booking

	// StaffFilter / RoomFilter ограничивают расчет одним мастером/кабинетом
	StaffFilter *int64
	RoomFilter  *int64
}

// TimeSlots вычисляет доступность каждого времени начала в рамках рабочих часов
// Времена начала генерируются с фиксированным шагом; последний слот должен
// полностью умещаться до закрытия (конец рабочего дня исключается)
func (c *Calculator) TimeSlots(in TimeSlotsInput) ([]domain.TimeSlot, error) {
	duration := in.DurationMinutes
	if in.Service != nil {
		duration = in.Service.DurationMinutes
	}
	if duration <= 0 {
		duration = domain.DefaultServiceDurationMinutes
	}

	starts, err := c.generateSlotStarts(duration)
	if err != nil {
		return nil, err
	}

	slots := make([]domain.TimeSlot, 0, len(starts))
	for _, start := range starts {
		end, err := start.AddMinutes(duration)
		if err != nil {
			return nil, err
		}

		staffCount, suggestedStaff := c.countAvailableStaff(in, start, end)
		roomCount, suggestedRoom := c.countAvailableRooms(in, start, end)

		slot := domain.TimeSlot{
			StartTime:           start,
			DurationMinutes:     duration,
			AvailableStaffCount: staffCount,
			AvailableRoomCount:  roomCount,
			Available:           staffCount > 0 && roomCount > 0,
		}
		if slot.Available {
			slot.SuggestedStaffID = suggestedStaff
			slot.SuggestedRoomID = suggestedRoom
		}

		slots = append(slots, slot)
	}

	return slots, nil
}

// generateSlotStarts генерирует времена начала слотов в рамках рабочих часов
// Слот включается, только если процедура целиком завершается до закрытия
func (c *Calculator) generateSlotStarts(durationMinutes int) ([]types.TimeString, error) {
	if err := c.cfg.BusinessHoursStart.Validate(); err != nil {
		return nil, fmt.Errorf("availability: invalid business hours start: %w", err)
	}
	if err := c.cfg.BusinessHoursEnd.Validate(); err != nil {
		return nil, fmt.Errorf("availability: invalid business hours end: %w", err)
	}

	starts := make([]types.TimeString, 0)

	current := c.cfg.BusinessHoursStart
	for current.IsBefore(c.cfg.BusinessHoursEnd) {
		end, err := current.AddMinutes(durationMinutes)
		if err != nil {
			// Процедура вышла за границу суток - дальше слотов нет
			break
		}
		if end.IsAfter(c.cfg.BusinessHoursEnd) {
			break
		}

		starts = append(starts, current)

		next, err := current.AddMinutes(c.cfg.SlotGranularityMinutes)
		if err != nil {
			break
		}
		current = next
	}

	return starts, nil
}

// countAvailableStaff считает мастеров, доступных в интервале [start, end)
// Мастер доступен, если он активен, подходит по специализации, его расписание
// со статусом available полностью покрывает интервал и у него нет
// конфликтующего бронирования. Возвращает также наименьший подходящий ID
func (c *Calculator) countAvailableStaff(in TimeSlotsInput, start, end types.TimeString) (int, *int64) {
	count := 0
	var suggested *int64

	for _, member := range in.Staff {
		if !member.IsActive {
			continue
		}
		if in.StaffFilter != nil && member.ID != *in.StaffFilter {
			continue
		}
		if in.Service != nil && !member.CanPerform(in.Service.Category) {
			continue
		}
		if !scheduleCovers(in.Schedules, member.ID, start, end) {
			continue
		}
		if conflict.HasForStaff(in.Bookings, member.ID, start, end, nil) {
			continue
		}

		count++
		if suggested == nil || member.ID < *suggested {
			id := member.ID
			suggested = &id
		}
	}

	return count, suggested
}

// countAvailableRooms считает кабинеты, доступные в интервале [start, end)
// Кабинет доступен, если он активен, совместим с услугой (слив, вместимость,
// ограничивающий список) и не занят конфликтующим бронированием
func (c *Calculator) countAvailableRooms(in TimeSlotsInput, start, end types.TimeString) (int, *int64) {
	count := 0
	var suggested *int64

	for _, room := range in.Rooms {
		if !room.IsActive {
			continue
		}
		if in.RoomFilter != nil && room.ID != *in.RoomFilter {
			continue
		}
		if in.Service != nil && !roomCompatible(room, in.Service) {
			continue
		}
		if conflict.HasForRoom(in.Bookings, room.ID, start, end, nil) {
			continue
		}

		count++
		if suggested == nil || room.ID < *suggested {
			id := room.ID
			suggested = &id
		}
	}

	return count, suggested
}

// roomCompatible проверяет совместимость кабинета с услугой без назначения
// (правила аллокатора в части требований, без порядка предпочтений)
func roomCompatible(room *domain.Room, service *domain.Service) bool {
	if service.RequiresSpecializedDrainage && !room.HasSpecializedDrainage {
		return false
	}
	if room.BedCapacity < service.MinRoomCapacity {
		return false
	}
	return service.AllowsRoom(room.ID)
}

// scheduleCovers проверяет, что у мастера есть интервал расписания
// со статусом available, полностью покрывающий [start, end)
func scheduleCovers(schedules []*domain.WorkSchedule, staffID int64, start, end types.TimeString) bool {
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
