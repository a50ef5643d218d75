package domain

// Page — одна страница выборки с метаданными для шаблона пагинации
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int64
}

// NewPage собирает страницу; perPage <= 0 приводится к 1
func NewPage[T any](items []T, page, perPage int, total int64) Page[T] {
	if perPage <= 0 {
		perPage = 1
	}
	return Page[T]{Items: items, Page: page, PerPage: perPage, Total: total}
}

// Pages возвращает общее число страниц
func (p Page[T]) Pages() int {
	if p.Total == 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }

func (p Page[T]) HasNext() bool { return p.Page < p.Pages() }

func (p Page[T]) PrevNum() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Page - 1
}

func (p Page[T]) NextNum() int {
	if !p.HasNext() {
		return 0
	}
	return p.Page + 1
}

// IterPages возвращает номера страниц для навигации: края и окрестность
// текущей страницы. 0 обозначает пропуск (многоточие).
func (p Page[T]) IterPages(leftEdge, leftCurrent, rightCurrent, rightEdge int) []int {
	pages := p.Pages()
	var out []int
	last := 0
	for num := 1; num <= pages; num++ {
		if num <= leftEdge ||
			(num > p.Page-leftCurrent-1 && num < p.Page+rightCurrent) ||
			num > pages-rightEdge {
			if last+1 != num {
				out = append(out, 0)
			}
			out = append(out, num)
			last = num
		}
	}
	return out
}

// Offset считает смещение первой записи страницы
func Offset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * perPage
}
