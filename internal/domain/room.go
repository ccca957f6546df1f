package domain

// Room represents a treatment room
type Room struct {
	ID          int64
	Name        string
	BedCapacity int

	// HasSpecializedDrainage кабинет оборудован специализированным сливом
	HasSpecializedDrainage bool

	IsActive bool
}

// FitsCapacity returns true if the room can host the given party size
func (r *Room) FitsCapacity(partySize int) bool {
	return r.BedCapacity >= partySize
}
