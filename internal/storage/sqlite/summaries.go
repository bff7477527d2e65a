package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/recall/internal/core"
)

type SummariesRepo struct {
	db *sql.DB
}

func NewSummariesRepo(db *sql.DB) *SummariesRepo {
	return &SummariesRepo{db: db}
}

func (r *SummariesRepo) AddSummary(ctx context.Context, summary core.Summary) error {
	createdAt := summary.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO summaries (session_id, content, covers_from, covers_to, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		summary.SessionID, summary.Content, summary.CoversFrom, summary.CoversTo, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	return nil
}

func (r *SummariesRepo) GetSummaries(ctx context.Context, sessionID string) ([]core.Summary, error) {
	query := `SELECT id, session_id, content, covers_from, covers_to, created_at
		FROM summaries WHERE session_id = ? ORDER BY covers_to ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []core.Summary
	for rows.Next() {
		var s core.Summary
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Content, &s.CoversFrom, &s.CoversTo, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *SummariesRepo) GetLatestSummary(ctx context.Context, sessionID string) (*core.Summary, error) {
	query := `SELECT id, session_id, content, covers_from, covers_to, created_at
		FROM summaries WHERE session_id = ? ORDER BY covers_to DESC LIMIT 1`

	var s core.Summary
	err := r.db.QueryRowContext(ctx, query, sessionID).
		Scan(&s.ID, &s.SessionID, &s.Content, &s.CoversFrom, &s.CoversTo, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest summary: %w", err)
	}
	return &s, nil
}
