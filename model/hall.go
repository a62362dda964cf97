package model

// HallConfig describes the seating capacity of an auditorium. RowSeats, when
// set, overrides SeatsPerRow row by row (index 0 is the front row).
type HallConfig struct {
	Name        string  `json:"name" mapstructure:"name"`
	Rows        int     `json:"rows" mapstructure:"rows"`
	SeatsPerRow int     `json:"seatsPerRow" mapstructure:"seats_per_row"`
	RowSeats    []int   `json:"rowSeats,omitempty" mapstructure:"row_seats"`
	Price       float64 `json:"price" mapstructure:"price"`
}

// SeatsInRow returns the number of seats in a 1-indexed row.
func (h HallConfig) SeatsInRow(row int) int {
	if row < 1 || row > h.Rows {
		return 0
	}
	if len(h.RowSeats) > 0 {
		if row > len(h.RowSeats) {
			return 0
		}
		return h.RowSeats[row-1]
	}
	return h.SeatsPerRow
}

// Valid reports whether every row holds at least one seat.
func (h HallConfig) Valid() bool {
	if h.Rows <= 0 {
		return false
	}
	for row := 1; row <= h.Rows; row++ {
		if h.SeatsInRow(row) <= 0 {
			return false
		}
	}
	return true
}

func (h HallConfig) Capacity() int {
	if !h.Valid() {
		return 0
	}
	total := 0
	for row := 1; row <= h.Rows; row++ {
		total += h.SeatsInRow(row)
	}
	return total
}

func (h HallConfig) SameCapacity(other HallConfig) bool {
	if h.Rows != other.Rows {
		return false
	}
	for row := 1; row <= h.Rows; row++ {
		if h.SeatsInRow(row) != other.SeatsInRow(row) {
			return false
		}
	}
	return true
}

var (
	SmallHall = HallConfig{Name: "small", Rows: 10, SeatsPerRow: 10, Price: 32}
	LargeHall = HallConfig{Name: "large", Rows: 15, SeatsPerRow: 20, Price: 38}
)
