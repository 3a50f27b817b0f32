package notifier

import (
	"context"
	"fmt"
	"strings"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends transactional email through Amazon SES
type SESNotifier struct {
	client sesAPI
	sender string
	logger *zap.Logger
}

// SESConfig holds the SES connection settings
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SenderEmail     string
}

// NewSESNotifier creates a notifier; static keys are used when set, the default chain otherwise
func NewSESNotifier(ctx context.Context, cfg SESConfig) (*SESNotifier, error) {
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email address is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return newSESNotifier(ses.NewFromConfig(awsCfg), cfg.SenderEmail), nil
}

func newSESNotifier(client sesAPI, sender string) *SESNotifier {
	return &SESNotifier{client: client, sender: sender, logger: util.GetLogger()}
}

func content(s string) *types.Content {
	return &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(s)}
}

// SendOrderConfirmation emails the customer a summary of a placed order
func (n *SESNotifier) SendOrderConfirmation(ctx context.Context, recipient, customerName string, event *models.OrderPlacedEvent) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	subject := fmt.Sprintf("Order #%s Confirmation - Thank You for Your Purchase!", event.OrderID)
	total := event.TotalAmount.StringFixed(2)

	var htmlItems, textItems strings.Builder
	for _, item := range event.Items {
		fmt.Fprintf(&htmlItems, "<li>%s x %d @ %s</li>", item.Title, item.Quantity, item.Price.StringFixed(2))
		fmt.Fprintf(&textItems, "- %s x %d @ %s\n", item.Title, item.Quantity, item.Price.StringFixed(2))
	}

	bodyHTML := fmt.Sprintf(`<html><body>
<p>Dear %s,</p>
<p>Thank you for your order! Your order #%s has been successfully placed.</p>
<ul>%s</ul>
<p><strong>Total Amount:</strong> %s</p>
<p>Payment method: %s. Current status: %s.</p>
</body></html>`, customerName, event.OrderID, htmlItems.String(), total, event.PaymentMethod, event.OrderStatus)

	bodyText := fmt.Sprintf("Dear %s,\n\nThank you for your order! Your order #%s has been successfully placed.\n\n%s\nTotal Amount: %s\nPayment method: %s. Current status: %s.\n",
		customerName, event.OrderID, textItems.String(), total, event.PaymentMethod, event.OrderStatus)

	input := &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: content(subject),
			Body: &types.Body{
				Html: content(bodyHTML),
				Text: content(bodyText),
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		util.NotificationsSentTotal.WithLabelValues("email", "error").Inc()
		return fmt.Errorf("failed to send email: %w", err)
	}

	util.NotificationsSentTotal.WithLabelValues("email", "ok").Inc()
	n.logger.Info("Order confirmation email sent",
		zap.String("order_id", event.OrderID),
		zap.String("recipient", recipient))
	return nil
}
