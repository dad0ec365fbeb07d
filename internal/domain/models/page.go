package models

import (
	"math"

	"github.com/hamza-safwan/mini-ride-booking/pkg/validator"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a list that is already ordered newest first.
type Page struct {
	Number int
	Size   int
}

func (p Page) Validate(v *validator.Validator) {
	v.Check(p.Number > 0, "page", "must be greater than zero")
	v.Check(p.Number <= 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(p.Size > 0, "page_size", "must be greater than zero")
	v.Check(p.Size <= MaxPageSize, "page_size", "must be a maximum of 100")
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

type Metadata struct {
	CurrentPage  int `json:"current_page"`
	PageSize     int `json:"page_size"`
	FirstPage    int `json:"first_page"`
	LastPage     int `json:"last_page"`
	TotalRecords int `json:"total_records"`
}

// Paginate returns the items of page p and the metadata describing it.
func Paginate[T any](items []T, p Page) ([]T, Metadata) {
	total := len(items)
	meta := Metadata{CurrentPage: p.Number, PageSize: p.Size, TotalRecords: total}
	if total == 0 {
		return []T{}, meta
	}
	meta.FirstPage = 1
	meta.LastPage = int(math.Ceil(float64(total) / float64(p.Size)))

	start := min(p.Offset(), total)
	end := min(start+p.Size, total)
	return items[start:end], meta
}
