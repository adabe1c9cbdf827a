package comms

import "time"

type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EmailRequest queues a bulk email to a runner audience. Delivery runs
// out of band; the API only records the request.
type EmailRequest struct {
	TemplateID string `json:"templateId,omitempty"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Audience   string `json:"audience"`
}

type EmailRecord struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Audience  string    `json:"audience"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Announcement struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}
