package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailChannel sends alert notifications over SES.
type EmailChannel struct {
	client     *sesv2.Client
	sender     string
	recipients []string
}

// NewEmailChannel builds an SES-backed email channel.
func NewEmailChannel(ctx context.Context, region, sender string, recipients []string) (*EmailChannel, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &EmailChannel{
		client:     sesv2.NewFromConfig(cfg),
		sender:     sender,
		recipients: recipients,
	}, nil
}

// Send delivers one plain-text email to the configured recipients.
func (e *EmailChannel) Send(ctx context.Context, subject, body string) error {
	if len(e.recipients) == 0 {
		return nil
	}

	_, err := e.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.sender),
		Destination: &types.Destination{
			ToAddresses: e.recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
