package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/repository"
)

type toolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) repository.ToolRepository {
	return &toolRepository{db: db}
}

const toolColumns = `id, owner_id, name, description, category, condition, daily_rate_cents, assessed_value_cents, available, postcode, created_on, updated_on, deleted_on`

func (r *toolRepository) Create(ctx context.Context, t *domain.Tool) error {
	query := `INSERT INTO tools (owner_id, name, description, category, condition, daily_rate_cents, assessed_value_cents, available, postcode, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	return r.db.QueryRowContext(ctx, query, t.OwnerID, t.Name, t.Description, t.Category,
		t.Condition, t.DailyRateCents, t.AssessedValueCents, t.Available, t.Postcode,
		time.Now(), time.Now()).Scan(&t.ID)
}

func scanTool(s interface{ Scan(...any) error }) (*domain.Tool, error) {
	t := &domain.Tool{}
	err := s.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.Category, &t.Condition,
		&t.DailyRateCents, &t.AssessedValueCents, &t.Available, &t.Postcode,
		&t.CreatedOn, &t.UpdatedOn, &t.DeletedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1 AND deleted_on IS NULL`
	return scanTool(r.db.QueryRowContext(ctx, query, id))
}

func (r *toolRepository) Update(ctx context.Context, t *domain.Tool) error {
	query := `UPDATE tools SET name=$1, description=$2, category=$3, condition=$4, daily_rate_cents=$5, assessed_value_cents=$6, available=$7, postcode=$8, updated_on=$9 WHERE id=$10 AND deleted_on IS NULL`
	_, err := r.db.ExecContext(ctx, query, t.Name, t.Description, t.Category, t.Condition,
		t.DailyRateCents, t.AssessedValueCents, t.Available, t.Postcode, time.Now(), t.ID)
	return err
}

// SoftDelete stamps deleted_on; rows are never hard-deleted.
func (r *toolRepository) SoftDelete(ctx context.Context, id int32) error {
	query := `UPDATE tools SET deleted_on=$1, available=false, updated_on=$1 WHERE id=$2 AND deleted_on IS NULL`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *toolRepository) ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Tool, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM tools WHERE owner_id = $1 AND deleted_on IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + toolColumns + ` FROM tools WHERE owner_id = $1 AND deleted_on IS NULL ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, ownerID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tools []domain.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, 0, err
		}
		tools = append(tools, *t)
	}
	return tools, count, rows.Err()
}

func (r *toolRepository) Search(ctx context.Context, query, category string, maxDailyRate int32, page, pageSize int32) ([]domain.Tool, int32, error) {
	offset := (page - 1) * pageSize
	sqlStr := `SELECT ` + toolColumns + ` FROM tools WHERE deleted_on IS NULL AND available = true`

	args := []interface{}{}
	argIdx := 1
	if query != "" {
		sqlStr += fmt.Sprintf(" AND name ILIKE $%d", argIdx)
		args = append(args, "%"+query+"%")
		argIdx++
	}
	if category != "" {
		sqlStr += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, category)
		argIdx++
	}
	if maxDailyRate > 0 {
		sqlStr += fmt.Sprintf(" AND daily_rate_cents <= $%d", argIdx)
		args = append(args, maxDailyRate)
		argIdx++
	}

	var count int32
	countSQL := "SELECT count(*) FROM (" + sqlStr + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sqlStr += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tools []domain.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, 0, err
		}
		tools = append(tools, *t)
	}
	return tools, count, rows.Err()
}

func (r *toolRepository) CountAvailableByOwner(ctx context.Context, ownerID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM tools WHERE owner_id = $1 AND available = true AND deleted_on IS NULL`
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&count)
	return count, err
}
