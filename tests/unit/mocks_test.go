package unit

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/payment"
	"toolpool-backend/internal/utils"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByPaymentCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateTier(ctx context.Context, userID int32, tier domain.Tier, grantedBy domain.TierGrantedBy, toolCount int32) error {
	args := m.Called(ctx, userID, tier, grantedBy, toolCount)
	return args.Error(0)
}
func (m *MockUserRepo) SetEmailVerified(ctx context.Context, userID int32) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockUserRepo) SetPaymentCustomerID(ctx context.Context, userID int32, customerID string) error {
	args := m.Called(ctx, userID, customerID)
	return args.Error(0)
}

// MockToolRepo
type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) Create(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}
func (m *MockToolRepo) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) Update(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}
func (m *MockToolRepo) SoftDelete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockToolRepo) ListByOwner(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Tool, int32, error) {
	args := m.Called(ctx, ownerID, page, pageSize)
	return args.Get(0).([]domain.Tool), args.Get(1).(int32), args.Error(2)
}
func (m *MockToolRepo) Search(ctx context.Context, query, category string, maxDailyRate int32, page, pageSize int32) ([]domain.Tool, int32, error) {
	args := m.Called(ctx, query, category, maxDailyRate, page, pageSize)
	return args.Get(0).([]domain.Tool), args.Get(1).(int32), args.Error(2)
}
func (m *MockToolRepo) CountAvailableByOwner(ctx context.Context, ownerID int32) (int32, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int32), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Rental, error) {
	args := m.Called(ctx, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) MarkPaid(ctx context.Context, id int32, paidOn time.Time) (bool, error) {
	args := m.Called(ctx, id, paidOn)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) Accept(ctx context.Context, id int32, acceptedOn time.Time) (bool, error) {
	args := m.Called(ctx, id, acceptedOn)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) RecordTransferResult(ctx context.Context, id int32, transferRef string, failed bool) error {
	args := m.Called(ctx, id, transferRef, failed)
	return args.Error(0)
}
func (m *MockRentalRepo) Reject(ctx context.Context, id int32, reason, refundRef string, rejectedOn time.Time) (bool, error) {
	args := m.Called(ctx, id, reason, refundRef, rejectedOn)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) MarkReturned(ctx context.Context, id int32, returnedOn time.Time, claimWindowEndsOn time.Time) (bool, error) {
	args := m.Called(ctx, id, returnedOn, claimWindowEndsOn)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) FileClaim(ctx context.Context, id int32, reason string, claimedOn time.Time) (bool, error) {
	args := m.Called(ctx, id, reason, claimedOn)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) ResolveClaim(ctx context.Context, id int32, outcome domain.DepositStatus, adminNotes, paymentRef string, resolvedOn time.Time) (bool, error) {
	args := m.Called(ctx, id, outcome, adminNotes, paymentRef, resolvedOn)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) ReleaseDeposit(ctx context.Context, id int32, refundRef string, releasedOn time.Time) (bool, error) {
	args := m.Called(ctx, id, refundRef, releasedOn)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) ListExpiredDeposits(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}

// MockToolRequestRepo
type MockToolRequestRepo struct {
	mock.Mock
}

func (m *MockToolRequestRepo) Create(ctx context.Context, req *domain.ToolRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockToolRequestRepo) GetByID(ctx context.Context, id int32) (*domain.ToolRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ToolRequest), args.Error(1)
}
func (m *MockToolRequestRepo) List(ctx context.Context, status string, page, pageSize int32) ([]domain.ToolRequest, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.ToolRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockToolRequestRepo) SetStatus(ctx context.Context, id int32, status domain.ToolRequestStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}
func (m *MockToolRequestRepo) ToggleUpvote(ctx context.Context, requestID, userID int32) (bool, int32, error) {
	args := m.Called(ctx, requestID, userID)
	return args.Bool(0), args.Get(1).(int32), args.Error(2)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockPaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateCheckout(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}
func (m *MockPaymentProvider) Refund(ctx context.Context, paymentRef, reason string, amountCents int32) (string, error) {
	args := m.Called(ctx, paymentRef, reason, amountCents)
	return args.String(0), args.Error(1)
}
func (m *MockPaymentProvider) Transfer(ctx context.Context, amountCents int32, destinationAccount, sourceRef string) (string, error) {
	args := m.Called(ctx, amountCents, destinationAccount, sourceRef)
	return args.String(0), args.Error(1)
}
func (m *MockPaymentProvider) RetrieveSubscriptionStatus(ctx context.Context, customerID string) (string, error) {
	args := m.Called(ctx, customerID)
	return args.String(0), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationEmail(ctx context.Context, email, username, token string) error {
	args := m.Called(ctx, email, username, token)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalRequestNotification(ctx context.Context, ownerEmail, renterName, toolName string) error {
	args := m.Called(ctx, ownerEmail, renterName, toolName)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalAcceptedNotification(ctx context.Context, renterEmail, toolName, ownerName string) error {
	args := m.Called(ctx, renterEmail, toolName, ownerName)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalRejectedNotification(ctx context.Context, renterEmail, toolName, reason string) error {
	args := m.Called(ctx, renterEmail, toolName, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendReturnConfirmation(ctx context.Context, renterEmail, toolName string, claimWindowEndsOn time.Time) error {
	args := m.Called(ctx, renterEmail, toolName, claimWindowEndsOn)
	return args.Error(0)
}
func (m *MockEmailService) SendOverdueReminder(ctx context.Context, renterEmail, toolName, endDate string) error {
	args := m.Called(ctx, renterEmail, toolName, endDate)
	return args.Error(0)
}
func (m *MockEmailService) SendDepositClaimNotification(ctx context.Context, renterEmail, toolName, reason string) error {
	args := m.Called(ctx, renterEmail, toolName, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendDepositReleasedNotification(ctx context.Context, renterEmail, toolName string) error {
	args := m.Called(ctx, renterEmail, toolName)
	return args.Error(0)
}
func (m *MockEmailService) SendDepositResolutionNotification(ctx context.Context, email, toolName, outcome string) error {
	args := m.Called(ctx, email, toolName, outcome)
	return args.Error(0)
}
func (m *MockEmailService) SendTransferFailedAlert(ctx context.Context, adminEmail string, rentalID int32, reason string) error {
	args := m.Called(ctx, adminEmail, rentalID, reason)
	return args.Error(0)
}

// MockTierService
type MockTierService struct {
	mock.Mock
}

func (m *MockTierService) RecalculateForUser(ctx context.Context, userID int32) (utils.TierResult, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(utils.TierResult), args.Error(1)
}
func (m *MockTierService) ApplyPaidTier(ctx context.Context, userID int32, tier domain.Tier) error {
	args := m.Called(ctx, userID, tier)
	return args.Error(0)
}
func (m *MockTierService) RevokePaidTier(ctx context.Context, userID int32) (utils.TierResult, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(utils.TierResult), args.Error(1)
}
