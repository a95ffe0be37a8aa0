// internal/common/aws/ses.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESClient struct {
	client *ses.Client
}

func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg)}, nil
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}

// SendPlain sends a UTF-8 plain-text email, the format run summaries use.
func (s *SESClient) SendPlain(ctx context.Context, from string, to []string, subject, body string) error {
	charset := "UTF-8"
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      &from,
		Destination: &types.Destination{ToAddresses: to},
		Message: &types.Message{
			Subject: &types.Content{Data: &subject, Charset: &charset},
			Body: &types.Body{
				Text: &types.Content{Data: &body, Charset: &charset},
			},
		},
	})
	return err
}
