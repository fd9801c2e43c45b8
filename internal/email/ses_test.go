package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSendPasswordResetEmail(t *testing.T) {
	fake := &fakeSES{}
	svc := &EmailService{client: fake, fromEmail: "noreply@puffbuddy.app", fromName: "PuffBuddy", baseURL: "https://puffbuddy.app"}

	require.NoError(t, svc.SendPasswordResetEmail(context.Background(), "user@example.com", "tok en"))

	require.NotNil(t, fake.input)
	assert.Equal(t, "PuffBuddy <noreply@puffbuddy.app>", aws.ToString(fake.input.Source))
	assert.Equal(t, []string{"user@example.com"}, fake.input.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(fake.input.Message.Body.Text.Data), "https://puffbuddy.app/reset-password?token=tok+en")
	assert.Contains(t, aws.ToString(fake.input.Message.Body.Html.Data), "https://puffbuddy.app/reset-password?token=tok+en")
}

func TestSendPasswordResetEmailError(t *testing.T) {
	svc := &EmailService{client: &fakeSES{err: errors.New("throttled")}, fromEmail: "noreply@puffbuddy.app"}

	err := svc.SendPasswordResetEmail(context.Background(), "user@example.com", "tok")
	assert.ErrorContains(t, err, "throttled")
}
