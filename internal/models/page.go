package models

// Page — стандартная обёртка постраничных ответов перевозчика.
type Page[T any] struct {
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
	Items       []T  `json:"items"`
}

type PageParams struct {
	Page  int
	Limit int
}
