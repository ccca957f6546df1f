package auditservice

import "time"

// StatusChangeEvent событие смены статуса бронирования
// Внешний аудит-сервис сохраняет полную историю переходов
type StatusChangeEvent struct {
	EventID    string    `json:"eventId"`
	BookingID  int64     `json:"bookingId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
	ActorID    int64     `json:"actorId"`
	Reason     *string   `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
