package mail

import (
	"context"
	"fmt"

	"github.com/lakowalski/luxmedhunter/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"
)

const charset = "UTF-8"

// sesAPI is the part of the SES v2 client the sender uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESSender struct {
	client sesAPI
	sender string
	log    *logrus.Logger
}

// NewSESSender creates an SES v2 client with the static keys of cfg
func NewSESSender(ctx context.Context, cfg config.SESConfig, log *logrus.Logger) (*SESSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.RegionName),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return &SESSender{client: sesv2.NewFromConfig(awsCfg), sender: cfg.Sender, log: log}, nil
}

func sendEmailInput(sender string, recipients []string, subject, body string) *sesv2.SendEmailInput {
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(sender),
		Destination:      &types.Destination{ToAddresses: recipients},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String(charset)},
				},
			},
		},
	}
}

func (s *SESSender) Send(ctx context.Context, recipients []string, subject, body string) error {
	out, err := s.client.SendEmail(ctx, sendEmailInput(s.sender, recipients, subject, body))
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	s.log.Infof("Email sent by SES, message id %s", aws.ToString(out.MessageId))
	return nil
}
