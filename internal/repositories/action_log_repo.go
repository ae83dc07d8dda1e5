package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adminportal/internal/models"

	"github.com/google/uuid"
)

type ActionLogRepository interface {
	Create(ctx context.Context, entry *models.ActionLog) error
	List(ctx context.Context, filters *models.ActionLogFilters) ([]*models.ActionLog, error)
	// ListDay returns all entries for one UTC day, oldest first. Used by the
	// archive export job.
	ListDay(ctx context.Context, day time.Time) ([]*models.ActionLog, error)
}

type actionLogRepo struct {
	db DB
}

func NewActionLogRepo(db DB) ActionLogRepository {
	return &actionLogRepo{db: db}
}

func (r *actionLogRepo) Create(ctx context.Context, entry *models.ActionLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var metadataBytes []byte
	if entry.Metadata != nil {
		var err error
		metadataBytes, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO user_action_logs (id, user_id, action, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.UserID, entry.Action, metadataBytes, entry.CreatedAt)
	return err
}

func (r *actionLogRepo) List(ctx context.Context, filters *models.ActionLogFilters) ([]*models.ActionLog, error) {
	if filters == nil {
		filters = &models.ActionLogFilters{Limit: 50}
	}

	query := `
		SELECT l.id, l.user_id, l.action, l.metadata, l.created_at
		FROM user_action_logs l
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 0

	if filters.Action != nil {
		argIdx++
		query += fmt.Sprintf(" AND l.action = $%d", argIdx)
		args = append(args, *filters.Action)
	}

	if filters.UserID != nil {
		argIdx++
		query += fmt.Sprintf(" AND l.user_id = $%d", argIdx)
		args = append(args, *filters.UserID)
	}

	if filters.CompanyCode != nil {
		// Tenant scoping: only entries whose actor belongs to the company.
		// Actorless (system) entries are excluded for scoped callers.
		argIdx++
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM users u WHERE u.id = l.user_id AND u.company_code = $%d)", argIdx)
		args = append(args, *filters.CompanyCode)
	}

	if filters.StartDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND l.created_at >= $%d", argIdx)
		args = append(args, *filters.StartDate)
	}

	if filters.EndDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND l.created_at <= $%d", argIdx)
		args = append(args, *filters.EndDate)
	}

	query += " ORDER BY l.created_at DESC"

	if filters.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ActionLog
	for rows.Next() {
		entry, err := scanActionLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *actionLogRepo) ListDay(ctx context.Context, day time.Time) ([]*models.ActionLog, error) {
	start := day.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	query := `
		SELECT l.id, l.user_id, l.action, l.metadata, l.created_at
		FROM user_action_logs l
		WHERE l.created_at >= $1 AND l.created_at < $2
		ORDER BY l.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ActionLog
	for rows.Next() {
		entry, err := scanActionLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActionLog(row rowScanner) (*models.ActionLog, error) {
	entry := &models.ActionLog{}
	var metadataBytes []byte
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.Action, &metadataBytes, &entry.CreatedAt); err != nil {
		return nil, err
	}
	if len(metadataBytes) > 0 {
		if err := json.Unmarshal(metadataBytes, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return entry, nil
}
