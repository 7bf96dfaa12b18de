package taskstore

import (
	"strings"

	"taskboard/internal/model"
)

// FilterAll matches any value for priority and status filters.
const FilterAll = "all"

const DefaultPerPage = 10

// PageSizes lists the accepted rows-per-page values.
var PageSizes = []int{5, 10, 20}

// Filter selects and paginates tasks for the admin listing.
type Filter struct {
	Search   string
	Priority string
	Status   string
	Page     int
	PerPage  int
}

type Page struct {
	Tasks      []model.Task `json:"tasks"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PerPage    int          `json:"perPage"`
	TotalPages int          `json:"totalPages"`
}

// Summary holds the admin dashboard counters.
type Summary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	High       int `json:"highPriority"`
	Users      int `json:"users"`
}

// Matches reports whether t passes the search, priority and status filters.
func (f Filter) Matches(t model.Task) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.Priority != "" && f.Priority != FilterAll && string(t.Priority) != f.Priority {
		return false
	}
	if f.Status != "" && f.Status != FilterAll && string(t.Status) != f.Status {
		return false
	}
	return true
}

// Query filters every task regardless of owner and returns the requested page.
// Out of range pages are clamped to the first or last page.
func (s *Store) Query(f Filter) Page {
	perPage := normalizePerPage(f.PerPage)

	matched := make([]model.Task, 0)
	for _, t := range s.All() {
		if f.Matches(t) {
			matched = append(matched, t)
		}
	}

	totalPages := (len(matched) + perPage - 1) / perPage
	page := f.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	return Page{
		Tasks:      matched[start:end],
		Total:      len(matched),
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

// Summarize computes the dashboard counters over every task.
func (s *Store) Summarize() Summary {
	var sum Summary
	owners := make(map[string]struct{})
	for _, t := range s.All() {
		sum.Total++
		switch t.Status {
		case model.StatusCompleted:
			sum.Completed++
		case model.StatusInProgress:
			sum.InProgress++
		}
		if t.Priority == model.PriorityHigh {
			sum.High++
		}
		owners[t.UserID] = struct{}{}
	}
	sum.Users = len(owners)
	return sum
}

func normalizePerPage(n int) int {
	for _, size := range PageSizes {
		if n == size {
			return n
		}
	}
	return DefaultPerPage
}
