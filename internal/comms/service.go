package comms

import (
	"context"
	"encoding/json"
	"errors"

	"marathon-admin/internal/db"
	"marathon-admin/internal/stream"

	"github.com/google/uuid"
)

type Service struct {
	db  db.Querier
	hub *stream.Hub
}

func NewService(q db.Querier, hub *stream.Hub) *Service {
	return &Service{db: q, hub: hub}
}

func (s *Service) ListTemplates(ctx context.Context) ([]Template, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, subject, body, type, created_at, updated_at
		FROM email_templates ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []Template{}
	for rows.Next() {
		var tpl Template
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Subject, &tpl.Body, &tpl.Type, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (s *Service) CreateTemplate(ctx context.Context, input Template) (Template, error) {
	if input.Name == "" || input.Subject == "" {
		return Template{}, errors.New("name and subject required")
	}
	input.ID = uuid.NewString()
	if input.Type == "" {
		input.Type = "general"
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO email_templates (id, name, subject, body, type)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, input.ID, input.Name, input.Subject, input.Body, input.Type)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Template{}, err
	}
	return input, nil
}

func (s *Service) UpdateTemplate(ctx context.Context, id string, patch Template) (Template, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, subject, body, type, created_at, updated_at
		FROM email_templates WHERE id = $1
	`, id)
	var tpl Template
	if err := row.Scan(&tpl.ID, &tpl.Name, &tpl.Subject, &tpl.Body, &tpl.Type, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return Template{}, err
	}
	if patch.Name != "" {
		tpl.Name = patch.Name
	}
	if patch.Subject != "" {
		tpl.Subject = patch.Subject
	}
	if patch.Body != "" {
		tpl.Body = patch.Body
	}
	if patch.Type != "" {
		tpl.Type = patch.Type
	}

	row = s.db.QueryRow(ctx, `
		UPDATE email_templates
		SET name=$2, subject=$3, body=$4, type=$5, updated_at=NOW()
		WHERE id=$1
		RETURNING updated_at
	`, id, tpl.Name, tpl.Subject, tpl.Body, tpl.Type)
	if err := row.Scan(&tpl.UpdatedAt); err != nil {
		return Template{}, err
	}
	return tpl, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM email_templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("template not found")
	}
	return nil
}

// QueueEmail records a bulk send request. A template id fills in the
// subject and body unless the request overrides them.
func (s *Service) QueueEmail(ctx context.Context, req EmailRequest) (EmailRecord, error) {
	if req.TemplateID != "" && (req.Subject == "" || req.Body == "") {
		row := s.db.QueryRow(ctx, `SELECT subject, body FROM email_templates WHERE id = $1`, req.TemplateID)
		var subject, body string
		if err := row.Scan(&subject, &body); err != nil {
			return EmailRecord{}, err
		}
		if req.Subject == "" {
			req.Subject = subject
		}
		if req.Body == "" {
			req.Body = body
		}
	}
	if req.Subject == "" {
		return EmailRecord{}, errors.New("subject required")
	}
	if req.Audience == "" {
		req.Audience = "all-runners"
	}

	record := EmailRecord{
		ID:       uuid.NewString(),
		Subject:  req.Subject,
		Audience: req.Audience,
		Status:   "queued",
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO email_log (id, subject, body, audience, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, record.ID, record.Subject, req.Body, record.Audience, record.Status)
	if err := row.Scan(&record.CreatedAt); err != nil {
		return EmailRecord{}, err
	}
	return record, nil
}

// Announce stores an announcement and pushes it to every connected
// dashboard.
func (s *Service) Announce(ctx context.Context, ann Announcement) (Announcement, error) {
	if ann.Message == "" {
		return Announcement{}, errors.New("message required")
	}

	if _, err := s.db.Exec(ctx, `
		INSERT INTO announcements (id, title, message)
		VALUES ($1,$2,$3)
	`, uuid.NewString(), ann.Title, ann.Message); err != nil {
		return Announcement{}, err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(ann)
		s.hub.Broadcast(stream.ChannelAnnouncement, payload)
	}
	return ann, nil
}
