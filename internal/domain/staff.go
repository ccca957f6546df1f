package domain

import (
	"time"

	"github.com/spaflow/booking-engine/pkg/types"
)

// StaffMember represents a spa therapist/master
type StaffMember struct {
	ID   int64
	Name string

	// Specializations категории услуг, которые выполняет мастер
	// Пустой список = универсал, выполняет любые услуги
	Specializations []string

	IsActive bool
}

// CanPerform проверяет, что мастер может выполнять услуги указанной категории
func (s *StaffMember) CanPerform(category string) bool {
	if len(s.Specializations) == 0 {
		return true
	}
	for _, spec := range s.Specializations {
		if spec == category {
			return true
		}
	}
	return false
}

// ScheduleStatus статус интервала рабочего расписания
type ScheduleStatus string

const (
	ScheduleAvailable   ScheduleStatus = "available"
	ScheduleBooked      ScheduleStatus = "booked"
	ScheduleBreak       ScheduleStatus = "break"
	ScheduleUnavailable ScheduleStatus = "unavailable"
)

// WorkSchedule рабочий интервал мастера на конкретную дату
// У одного мастера может быть несколько непересекающихся интервалов в день
// (например, смена с перерывом). Инвариант: EndTime > StartTime
type WorkSchedule struct {
	ID        int64
	StaffID   int64
	WorkDate  time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	Status    ScheduleStatus
}

// IsBookable returns true if bookings can be allocated against this entry
func (w *WorkSchedule) IsBookable() bool {
	return w.Status == ScheduleAvailable
}

// Covers проверяет, что интервал расписания полностью покрывает [start, end)
func (w *WorkSchedule) Covers(start, end types.TimeString) bool {
	return !w.StartTime.IsAfter(start) && !w.EndTime.IsBefore(end)
}

// DurationMinutes возвращает длительность интервала в минутах
func (w *WorkSchedule) DurationMinutes() int {
	start, err := w.StartTime.Minutes()
	if err != nil {
		return 0
	}
	end, err := w.EndTime.Minutes()
	if err != nil {
		return 0
	}
	if end <= start {
		return 0
	}
	return end - start
}
