package runners

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marathon-admin/internal/db"

	"github.com/google/uuid"
)

const defaultPerPage = 20

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

func (f Filters) conditions() (string, []any) {
	var conditions []string
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR runner_number ILIKE $%d)", len(args), len(args), len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (s *Service) List(ctx context.Context, f Filters) (Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}

	where, args := f.conditions()

	var total int
	row := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM runners`+where, args...)
	if err := row.Scan(&total); err != nil {
		return Page{}, err
	}

	query := `
		SELECT id, name, email, COALESCE(phone, ''), runner_number, category, status, registered_at
		FROM runners` + where +
		fmt.Sprintf(" ORDER BY registered_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	list := []Runner{}
	for rows.Next() {
		var r Runner
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.Number, &r.Category, &r.Status, &r.RegisteredAt); err != nil {
			return Page{}, err
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	totalPages := (total + f.PerPage - 1) / f.PerPage
	return Page{
		Runners:    list,
		Total:      total,
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (Runner, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), runner_number, category, status, registered_at
		FROM runners WHERE id = $1
	`, id)
	var r Runner
	if err := row.Scan(&r.ID, &r.Name, &r.Email, &r.Phone, &r.Number, &r.Category, &r.Status, &r.RegisteredAt); err != nil {
		return Runner{}, err
	}
	return r, nil
}

func (s *Service) Create(ctx context.Context, input Runner) (Runner, error) {
	if input.Name == "" || input.Email == "" || input.Number == "" {
		return Runner{}, errors.New("name, email, runnerNumber required")
	}
	input.ID = uuid.NewString()
	if input.Status == "" {
		input.Status = "active"
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO runners (id, name, email, phone, runner_number, category, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING registered_at
	`, input.ID, input.Name, input.Email, input.Phone, input.Number, input.Category, input.Status)
	if err := row.Scan(&input.RegisteredAt); err != nil {
		return Runner{}, err
	}
	return input, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Runner) (Runner, error) {
	runner, err := s.Get(ctx, id)
	if err != nil {
		return Runner{}, err
	}
	if patch.Name != "" {
		runner.Name = patch.Name
	}
	if patch.Email != "" {
		runner.Email = patch.Email
	}
	if patch.Phone != "" {
		runner.Phone = patch.Phone
	}
	if patch.Category != "" {
		runner.Category = patch.Category
	}
	if patch.Status != "" {
		runner.Status = patch.Status
	}

	_, err = s.db.Exec(ctx, `
		UPDATE runners
		SET name=$2, email=$3, phone=$4, category=$5, status=$6
		WHERE id=$1
	`, id, runner.Name, runner.Email, runner.Phone, runner.Category, runner.Status)
	if err != nil {
		return Runner{}, err
	}
	return runner, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM runners WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("runner not found")
	}
	return nil
}
