package email

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/puffbuddy/backend/internal/logger"
	"go.uber.org/zap"
)

// Sender delivers transactional emails
type Sender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error
}

// sesAPI is the part of the SES client the service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailService handles sending emails via AWS SES
type EmailService struct {
	client    sesAPI
	fromEmail string
	fromName  string
	baseURL   string
}

var _ Sender = (*EmailService)(nil)

// NewEmailService creates a new email service using AWS SES
func NewEmailService(region, fromEmail, fromName, baseURL string) (*EmailService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &EmailService{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
	}, nil
}

// ResetURL is the web app page that consumes a reset token
func (e *EmailService) ResetURL(resetToken string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", e.baseURL, url.QueryEscape(resetToken))
}

// SendPasswordResetEmail sends a password reset email with the reset token
func (e *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error {
	resetURL := e.ResetURL(resetToken)

	subject := "Reset your PuffBuddy password"
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.button { display: inline-block; padding: 12px 24px; background-color: #3fa34d; color: white; text-decoration: none; border-radius: 6px; margin: 20px 0; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Reset your password</h1>
		<p>Someone asked to reset the password of your PuffBuddy account.</p>
		<p>The link below expires in 1 hour.</p>
		<a href="%s" class="button">Reset password</a>
		<p>Or paste this link into your browser:</p>
		<p style="word-break: break-all; color: #666;">%s</p>
		<p>If you did not ask for this, ignore this email and your password stays the same.</p>
	</div>
</body>
</html>`, resetURL, resetURL)

	textBody := fmt.Sprintf(`Reset your PuffBuddy password

Someone asked to reset the password of your PuffBuddy account.
The link below expires in 1 hour.

%s

If you did not ask for this, ignore this email and your password stays the same.
`, resetURL)

	from := e.fromEmail
	if e.fromName != "" {
		from = fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	out, err := e.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	logger.Log.Info("Password reset email sent", zap.String("message_id", aws.ToString(out.MessageId)))
	return nil
}
