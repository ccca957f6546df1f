package domain

// Service represents a spa treatment from the service catalog
// Referenced by bookings, never embedded; immutable during a booking's lifetime
type Service struct {
	ID              int64
	Name            string
	Category        string
	DurationMinutes int
	Price           float64

	// RequiresSpecializedDrainage restricts the service to rooms with
	// specialized plumbing (e.g. body scrubs, hydrotherapy)
	RequiresSpecializedDrainage bool

	// MinRoomCapacity минимальное количество мест в кабинете (2 для парных процедур)
	MinRoomCapacity int

	// AllowedRoomIDs необязательный ограничивающий список кабинетов
	// Пустой список = услуга доступна в любом подходящем кабинете
	AllowedRoomIDs []int64

	IsActive bool
}

// IsCouples returns true if the service needs a room with at least two beds
func (s *Service) IsCouples() bool {
	return s.MinRoomCapacity >= 2
}

// AllowsRoom проверяет, что кабинет входит в ограничивающий список услуги
// Пустой список разрешает любой кабинет
func (s *Service) AllowsRoom(roomID int64) bool {
	if len(s.AllowedRoomIDs) == 0 {
		return true
	}
	for _, id := range s.AllowedRoomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}
