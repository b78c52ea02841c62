package sns

import (
	"context"
	"errors"
	"pawsclinic/cmd/internal/integration/messaging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"
)

const ProviderName = "sns"

const (
	attrOriginationNumber = "AWS.MM.SMS.OriginationNumber"
	attrSenderID          = "AWS.SNS.SMS.SenderID"
	attrSMSType           = "AWS.SNS.SMS.SMSType"
)

type PublishAPI interface {
	Publish(ctx context.Context, params *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

type Client struct {
	api PublishAPI
}

// InitSNSClient builds a client from the default AWS credential chain.
// An empty region leaves region resolution to the environment.
func InitSNSClient(ctx context.Context, region string) (*Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(awssns.NewFromConfig(cfg)), nil
}

func NewClient(api PublishAPI) *Client {
	return &Client{api: api}
}

func (c *Client) Send(ctx context.Context, msg *messaging.Message) (*messaging.Receipt, error) {
	if msg.Channel != "" && msg.Channel != messaging.ChannelSMS {
		return nil, messaging.ErrUnsupportedChannel
	}

	attrs := map[string]types.MessageAttributeValue{
		attrSMSType: stringAttr("Transactional"),
	}
	if msg.From != "" {
		attrs[attrOriginationNumber] = stringAttr(msg.From)
	} else if msg.SenderID != "" {
		attrs[attrSenderID] = stringAttr(msg.SenderID)
	}

	out, err := c.api.Publish(ctx, &awssns.PublishInput{
		PhoneNumber:       aws.String(msg.To),
		Message:           aws.String(msg.Body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return nil, mapError(err)
	}

	receipt := &messaging.Receipt{}
	if out != nil && out.MessageId != nil {
		receipt.SID = *out.MessageId
	}
	return receipt, nil
}

func stringAttr(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}

func mapError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &messaging.ProviderError{
			Provider: ProviderName,
			Code:     apiErr.ErrorCode(),
			Message:  apiErr.ErrorMessage(),
		}
	}
	return err
}
