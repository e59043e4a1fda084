package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/repository"

	"github.com/lib/pq"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const uniqueViolation = "23505"

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, username, phone_number, password_hash, email_verified, is_admin, tier, tier_granted_by, available_tool_count, payment_customer_id, payout_account_id, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		u.Email, u.Username, u.PhoneNumber, u.PasswordHash, u.EmailVerified, u.IsAdmin,
		u.Tier, u.TierGrantedBy, u.AvailableToolCount, u.PaymentCustomerID, u.PayoutAccountID,
		time.Now(), time.Now()).Scan(&u.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicate
	}
	return err
}

const userColumns = `id, email, username, phone_number, password_hash, email_verified, is_admin, tier, tier_granted_by, available_tool_count, payment_customer_id, payout_account_id, created_on, updated_on`

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PhoneNumber, &u.PasswordHash,
		&u.EmailVerified, &u.IsAdmin, &u.Tier, &u.TierGrantedBy, &u.AvailableToolCount,
		&u.PaymentCustomerID, &u.PayoutAccountID, &u.CreatedOn, &u.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) GetByPaymentCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE payment_customer_id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, customerID))
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email=$1, username=$2, phone_number=$3, payout_account_id=$4, updated_on=$5 WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query, u.Email, u.Username, u.PhoneNumber, u.PayoutAccountID, time.Now(), u.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicate
	}
	return err
}

func (r *userRepository) UpdateTier(ctx context.Context, userID int32, tier domain.Tier, grantedBy domain.TierGrantedBy, toolCount int32) error {
	query := `UPDATE users SET tier=$1, tier_granted_by=$2, available_tool_count=$3, updated_on=$4 WHERE id=$5`
	_, err := r.db.ExecContext(ctx, query, tier, grantedBy, toolCount, time.Now(), userID)
	return err
}

func (r *userRepository) SetEmailVerified(ctx context.Context, userID int32) error {
	query := `UPDATE users SET email_verified=true, updated_on=$1 WHERE id=$2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	return err
}

func (r *userRepository) SetPaymentCustomerID(ctx context.Context, userID int32, customerID string) error {
	query := `UPDATE users SET payment_customer_id=$1, updated_on=$2 WHERE id=$3`
	_, err := r.db.ExecContext(ctx, query, customerID, time.Now(), userID)
	return err
}
