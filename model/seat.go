package model

import (
	"fmt"
	"strconv"
	"strings"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatSelected  SeatStatus = "selected"
	SeatSold      SeatStatus = "sold"
)

func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatSelected, SeatSold:
		return true
	default:
		return false
	}
}

// SeatID is the (row, col) key of a seat. Both parts are 1-indexed.
type SeatID struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (id SeatID) String() string {
	return fmt.Sprintf("%d-%d", id.Row, id.Col)
}

// Less orders seat ids row-major.
func (id SeatID) Less(other SeatID) bool {
	if id.Row != other.Row {
		return id.Row < other.Row
	}
	return id.Col < other.Col
}

// ParseSeatID parses the "<row>-<col>" form produced by SeatID.String.
func ParseSeatID(value string) (SeatID, error) {
	rowPart, colPart, ok := strings.Cut(strings.TrimSpace(value), "-")
	if !ok {
		return SeatID{}, fmt.Errorf("invalid seat id %q", value)
	}
	row, err := strconv.Atoi(rowPart)
	if err != nil {
		return SeatID{}, fmt.Errorf("invalid seat row in %q: %w", value, err)
	}
	col, err := strconv.Atoi(colPart)
	if err != nil {
		return SeatID{}, fmt.Errorf("invalid seat column in %q: %w", value, err)
	}
	if row < 1 || col < 1 {
		return SeatID{}, fmt.Errorf("seat id %q out of range", value)
	}
	return SeatID{Row: row, Col: col}, nil
}

type Seat struct {
	ID     SeatID     `json:"id"`
	Status SeatStatus `json:"status"`
	Price  float64    `json:"price"`
}

// RowLabel returns the letter used for a row on the chart: 1 -> A, 26 -> Z,
// 27 -> AA.
func RowLabel(row int) string {
	if row < 1 {
		return ""
	}
	var label []byte
	for row > 0 {
		row--
		label = append([]byte{byte('A' + row%26)}, label...)
		row /= 26
	}
	return string(label)
}

// Label is the human form shown on receipts, e.g. "C4".
func (id SeatID) Label() string {
	return fmt.Sprintf("%s%d", RowLabel(id.Row), id.Col)
}
