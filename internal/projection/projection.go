// Package projection derives the displayed task list from the collection.
// Everything here is pure: no I/O, no shared state, inputs are never modified.
package projection

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"taskman/internal/service"
)

// Filter selects tasks by completion state.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCompleted  Filter = "completed"
	FilterIncomplete Filter = "incomplete"
)

// Field is the sort key.
type Field string

const (
	FieldTitle Field = "title"
	FieldID    Field = "id"
)

// Order is the sort direction.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// Sort is a sort field plus direction.
type Sort struct {
	Field Field
	Order Order
}

// DefaultSort orders by title, A to Z.
var DefaultSort = Sort{Field: FieldTitle, Order: Ascending}

// ParseFilter validates a filter name.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterCompleted, FilterIncomplete:
		return f, nil
	}
	return "", fmt.Errorf("invalid filter: %s (want all, completed or incomplete)", s)
}

// ParseSort validates a field and order pair.
func ParseSort(field, order string) (Sort, error) {
	var s Sort
	switch f := Field(field); f {
	case FieldTitle, FieldID:
		s.Field = f
	default:
		return Sort{}, fmt.Errorf("invalid sort field: %s (want title or id)", field)
	}
	switch o := Order(order); o {
	case Ascending, Descending:
		s.Order = o
	default:
		return Sort{}, fmt.Errorf("invalid sort order: %s (want asc or desc)", order)
	}
	return s, nil
}

// Next cycles all -> incomplete -> completed -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterIncomplete
	case FilterIncomplete:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Match reports whether t passes the filter.
func (f Filter) Match(t service.Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterIncomplete:
		return !t.Completed
	default:
		return true
	}
}

// Reverse returns the opposite direction.
func (o Order) Reverse() Order {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// Project returns the tasks matching filter, ordered by sort.
// The sort is stable: tasks that compare equal keep their collection order,
// in both directions.
func Project(tasks []service.Task, filter Filter, sort Sort) []service.Task {
	// Title keys are folded once per call; a Caser is not safe for concurrent use.
	lower := cases.Lower(language.Und)

	rows := make([]row, 0, len(tasks))
	for _, t := range tasks {
		if !filter.Match(t) {
			continue
		}
		r := row{task: t}
		if sort.Field != FieldID {
			r.title = lower.String(t.Title)
		}
		rows = append(rows, r)
	}

	compare := compareTitle
	if sort.Field == FieldID {
		compare = compareID
	}
	if sort.Order == Descending {
		slices.SortStableFunc(rows, func(a, b row) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(rows, compare)
	}

	out := make([]service.Task, len(rows))
	for i, r := range rows {
		out[i] = r.task
	}
	return out
}

// row is a task with its precomputed sort key.
type row struct {
	task  service.Task
	title string
}

// compareTitle orders by lower-cased title; an empty title sorts first.
func compareTitle(a, b row) int {
	return cmp.Compare(a.title, b.title)
}

// compareID orders numerically when both ids are integers, byte-wise otherwise.
func compareID(a, b row) int {
	ai, aerr := strconv.ParseInt(a.task.ID, 10, 64)
	bi, berr := strconv.ParseInt(b.task.ID, 10, 64)
	if aerr == nil && berr == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a.task.ID, b.task.ID)
}
