package runners

import "time"

type Runner struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Number       string    `json:"runnerNumber"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type Filters struct {
	Category string
	Status   string
	Search   string
	Page     int
	PerPage  int
}

// Page is a paginated slice of runners plus list totals.
type Page struct {
	Runners    []Runner `json:"runners"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalPages int      `json:"totalPages"`
}
