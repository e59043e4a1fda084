package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"toolpool-backend/internal/domain"
	"toolpool-backend/internal/logger"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	baseURL   string
}

func NewEmailService(apiKey, fromEmail, fromName, baseURL string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
	}
}

func (s *sendGridEmailService) send(ctx context.Context, to, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText,
		fmt.Sprintf("<p>%s</p>", plainText))

	logger.ExternalServiceCall("sendgrid", "send", "subject", subject)
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err)
		return fmt.Errorf("%w: sendgrid: %v", domain.ErrExternalService, err)
	}
	if response.StatusCode >= 400 {
		err := fmt.Errorf("%w: sendgrid status %d: %s", domain.ErrExternalService, response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "send", nil)
	return nil
}

func (s *sendGridEmailService) SendVerificationEmail(ctx context.Context, email, username, token string) error {
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", s.baseURL, token)
	body := fmt.Sprintf("Hi %s, welcome to ToolPool. Verify your email by visiting %s", username, link)
	return s.send(ctx, email, "Verify your ToolPool email", body)
}

func (s *sendGridEmailService) SendRentalRequestNotification(ctx context.Context, ownerEmail, renterName, toolName string) error {
	body := fmt.Sprintf("%s has paid and requested to rent your %s. Accept or reject the request in your dashboard.", renterName, toolName)
	return s.send(ctx, ownerEmail, fmt.Sprintf("New rental request: %s", toolName), body)
}

func (s *sendGridEmailService) SendRentalAcceptedNotification(ctx context.Context, renterEmail, toolName, ownerName string) error {
	body := fmt.Sprintf("%s accepted your rental request for %s. You can arrange pickup now.", ownerName, toolName)
	return s.send(ctx, renterEmail, fmt.Sprintf("Rental accepted: %s", toolName), body)
}

func (s *sendGridEmailService) SendRentalRejectedNotification(ctx context.Context, renterEmail, toolName, reason string) error {
	body := fmt.Sprintf("Your rental request for %s was rejected (%s). Your payment and deposit have been refunded in full.", toolName, reason)
	return s.send(ctx, renterEmail, fmt.Sprintf("Rental rejected: %s", toolName), body)
}

func (s *sendGridEmailService) SendReturnConfirmation(ctx context.Context, renterEmail, toolName string, claimWindowEndsOn time.Time) error {
	body := fmt.Sprintf("The return of %s has been recorded. Your deposit will be refunded automatically on %s unless the owner files a claim.",
		toolName, claimWindowEndsOn.Format("2006-01-02"))
	return s.send(ctx, renterEmail, fmt.Sprintf("Return confirmed: %s", toolName), body)
}

func (s *sendGridEmailService) SendOverdueReminder(ctx context.Context, renterEmail, toolName, endDate string) error {
	body := fmt.Sprintf("Your rental of %s was due back on %s. Please arrange the return with the owner.", toolName, endDate)
	return s.send(ctx, renterEmail, fmt.Sprintf("Rental overdue: %s", toolName), body)
}

func (s *sendGridEmailService) SendDepositClaimNotification(ctx context.Context, renterEmail, toolName, reason string) error {
	body := fmt.Sprintf("The owner of %s filed a claim against your deposit: %s. An administrator will review it.", toolName, reason)
	return s.send(ctx, renterEmail, fmt.Sprintf("Deposit claim filed: %s", toolName), body)
}

func (s *sendGridEmailService) SendDepositReleasedNotification(ctx context.Context, renterEmail, toolName string) error {
	body := fmt.Sprintf("Your deposit for %s has been refunded.", toolName)
	return s.send(ctx, renterEmail, fmt.Sprintf("Deposit refunded: %s", toolName), body)
}

func (s *sendGridEmailService) SendDepositResolutionNotification(ctx context.Context, email, toolName, outcome string) error {
	body := fmt.Sprintf("The deposit claim for %s has been resolved: %s.", toolName, outcome)
	return s.send(ctx, email, fmt.Sprintf("Deposit claim resolved: %s", toolName), body)
}

func (s *sendGridEmailService) SendTransferFailedAlert(ctx context.Context, adminEmail string, rentalID int32, reason string) error {
	body := fmt.Sprintf("Payout transfer for rental %d failed and needs manual retry: %s", rentalID, reason)
	return s.send(ctx, adminEmail, fmt.Sprintf("ACTION REQUIRED: payout failed for rental %d", rentalID), body)
}
