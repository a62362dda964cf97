package model

type Film struct {
	Id            string  `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"originalTitle"`
	ContentRating string  `json:"contentRating"`
	Duration      string  `json:"duration"`
	Price         float64 `json:"price"`
}
