package repository

import (
	"context"
	"errors"
	"time"

	"consulting_leads_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RecordActionParams struct {
	LeadID uuid.UUID
	Action domain.ActionType
	Result domain.ActionResult
	Detail string
}

func (r *Repository) RecordAction(ctx context.Context, params RecordActionParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_actions (lead_id, action, result, detail)
		VALUES ($1, $2, $3, $4)
	`, params.LeadID, string(params.Action), string(params.Result), params.Detail)
	return err
}

// ListActions returns the audit trail for a lead, newest first.
func (r *Repository) ListActions(ctx context.Context, leadID uuid.UUID) ([]domain.ActionRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, action, result, detail, executed_at
		FROM lead_actions
		WHERE lead_id = $1
		ORDER BY executed_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ActionRecord, 0)
	for rows.Next() {
		var (
			rec            domain.ActionRecord
			action, result string
		)
		if err := rows.Scan(&rec.ID, &rec.LeadID, &action, &result, &rec.Detail, &rec.ExecutedAt); err != nil {
			return nil, err
		}
		rec.Action = domain.ActionType(action)
		rec.Result = domain.ActionResult(result)
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// LastSuccessfulActionAt reports when action last succeeded for the lead.
func (r *Repository) LastSuccessfulActionAt(ctx context.Context, leadID uuid.UUID, action domain.ActionType) (time.Time, bool, error) {
	var at time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT executed_at FROM lead_actions
		WHERE lead_id = $1 AND action = $2 AND result = 'success'
		ORDER BY executed_at DESC
		LIMIT 1
	`, leadID, string(action)).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}
