package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/repository"
)

type toolRequestRepository struct {
	db *sql.DB
}

func NewToolRequestRepository(db *sql.DB) repository.ToolRequestRepository {
	return &toolRequestRepository{db: db}
}

const requestColumns = `id, user_id, tool_name, category, postcode, description, upvote_count, status, created_on, updated_on`

func (r *toolRequestRepository) Create(ctx context.Context, req *domain.ToolRequest) error {
	query := `INSERT INTO tool_requests (user_id, tool_name, category, postcode, description, upvote_count, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query, req.UserID, req.ToolName, req.Category,
		req.Postcode, req.Description, domain.ToolRequestStatusOpen, time.Now(), time.Now()).Scan(&req.ID)
}

func scanRequest(s interface{ Scan(...any) error }) (*domain.ToolRequest, error) {
	req := &domain.ToolRequest{}
	err := s.Scan(&req.ID, &req.UserID, &req.ToolName, &req.Category, &req.Postcode,
		&req.Description, &req.UpvoteCount, &req.Status, &req.CreatedOn, &req.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *toolRequestRepository) GetByID(ctx context.Context, id int32) (*domain.ToolRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM tool_requests WHERE id = $1`
	return scanRequest(r.db.QueryRowContext(ctx, query, id))
}

func (r *toolRequestRepository) List(ctx context.Context, status string, page, pageSize int32) ([]domain.ToolRequest, int32, error) {
	offset := (page - 1) * pageSize

	countSQL := `SELECT count(*) FROM tool_requests`
	listSQL := `SELECT ` + requestColumns + ` FROM tool_requests`
	args := []interface{}{}
	if status != "" {
		countSQL += ` WHERE status = $1`
		listSQL += ` WHERE status = $1`
		args = append(args, status)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	if status != "" {
		listSQL += ` ORDER BY upvote_count DESC, created_on DESC LIMIT $2 OFFSET $3`
	} else {
		listSQL += ` ORDER BY upvote_count DESC, created_on DESC LIMIT $1 OFFSET $2`
	}
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []domain.ToolRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *req)
	}
	return requests, count, rows.Err()
}

func (r *toolRequestRepository) SetStatus(ctx context.Context, id int32, status domain.ToolRequestStatus) (bool, error) {
	// Only OPEN requests may transition.
	query := `UPDATE tool_requests SET status=$1, updated_on=$2 WHERE id=$3 AND status=$4`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id, domain.ToolRequestStatusOpen)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ToggleUpvote flips the (request, user) upvote inside one transaction. The
// counter is adjusted with DB-side arithmetic, never read-modify-write, and
// the decrement is clamped at zero.
func (r *toolRequestRepository) ToggleUpvote(ctx context.Context, requestID, userID int32) (bool, int32, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM upvotes WHERE request_id = $1 AND user_id = $2`, requestID, userID)
	if err != nil {
		return false, 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	var upvoted bool
	var newCount int32
	if deleted > 0 {
		err = tx.QueryRowContext(ctx,
			`UPDATE tool_requests SET upvote_count = GREATEST(upvote_count - 1, 0), updated_on = $1
			 WHERE id = $2 RETURNING upvote_count`, time.Now(), requestID).Scan(&newCount)
		upvoted = false
	} else {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO upvotes (request_id, user_id, created_on) VALUES ($1, $2, $3)`,
			requestID, userID, time.Now()); err != nil {
			return false, 0, err
		}
		err = tx.QueryRowContext(ctx,
			`UPDATE tool_requests SET upvote_count = upvote_count + 1, updated_on = $1
			 WHERE id = $2 RETURNING upvote_count`, time.Now(), requestID).Scan(&newCount)
		upvoted = true
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, 0, domain.ErrNotFound
	}
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return upvoted, newCount, nil
}
