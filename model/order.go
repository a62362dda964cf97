package model

import "time"

// Order is the summary produced when a selection is committed.
type Order struct {
	ID        string    `json:"id"`
	Film      string    `json:"film"`
	Seats     []SeatID  `json:"seats"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

func (o Order) SeatLabels() []string {
	labels := make([]string, 0, len(o.Seats))
	for _, id := range o.Seats {
		labels = append(labels, id.Label())
	}
	return labels
}
