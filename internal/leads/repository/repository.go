package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"consulting_leads_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

const leadColumns = `id, name, email, phone, inquiry, source, status, created_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CreateLeadParams struct {
	Name    string
	Email   string
	Phone   string
	Inquiry string
	Source  string
}

// Create inserts a lead with status new. id and created_at come from the database.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, inquiry, source, status)
		VALUES ($1, $2, $3, $4, $5, 'new')
		RETURNING `+leadColumns,
		params.Name, params.Email, params.Phone, params.Inquiry, params.Source,
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortName      SortField = "name"
)

type ListParams struct {
	Search    string
	Status    *domain.Status
	SortBy    SortField
	Ascending bool
}

// List returns leads matching the optional free-text search and status filter.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, error) {
	var (
		where []string
		args  []any
	)
	if search := strings.TrimSpace(params.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR inquiry ILIKE $%d)", n, n, n, n))
	}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderClause(params.SortBy, params.Ascending)

	return r.queryLeads(ctx, query, args...)
}

// ListAll returns every lead, oldest first, for automation runs.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Lead, error) {
	return r.queryLeads(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at ASC`)
}

// UpdateStatus is a plain last-write-wins update.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET status = $2 WHERE id = $1
		RETURNING `+leadColumns, id, string(status))
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) queryLeads(ctx context.Context, query string, args ...any) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead   domain.Lead
		status string
	)
	if err := row.Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Inquiry, &lead.Source, &status, &lead.CreatedAt); err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.Status(status)
	return lead, nil
}

func orderClause(field SortField, ascending bool) string {
	column := "created_at"
	if field == SortName {
		column = "lower(name)"
	}
	dir := "DESC"
	if ascending {
		dir = "ASC"
	}
	return column + " " + dir + ", id " + dir
}
