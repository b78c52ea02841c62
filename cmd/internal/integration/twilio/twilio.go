package twilio

import (
	"context"
	"errors"
	"pawsclinic/cmd/internal/integration/messaging"
	"strconv"
	"strings"

	twiliogo "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const ProviderName = "twilio"

var ErrMissingCredentials = errors.New("twilio: account sid and auth token are required")

// MessageCreator is the slice of the Twilio REST API this package uses.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type Client struct {
	api MessageCreator
}

func InitTwilioClient(accountSID, authToken string) (*Client, error) {
	accountSID = strings.TrimSpace(accountSID)
	authToken = strings.TrimSpace(authToken)
	if accountSID == "" || authToken == "" {
		return nil, ErrMissingCredentials
	}

	rest := twiliogo.NewRestClientWithParams(twiliogo.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return NewClient(rest.Api), nil
}

func NewClient(api MessageCreator) *Client {
	return &Client{api: api}
}

func (c *Client) Send(ctx context.Context, msg *messaging.Message) (*messaging.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetBody(msg.Body)
	if msg.From != "" {
		params.SetFrom(msg.From)
	} else {
		params.SetMessagingServiceSid(msg.SenderID)
	}

	resp, err := c.api.CreateMessage(params)
	if err != nil {
		return nil, mapError(err)
	}

	receipt := &messaging.Receipt{}
	if resp != nil && resp.Sid != nil {
		receipt.SID = *resp.Sid
	}
	return receipt, nil
}

func mapError(err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		return &messaging.ProviderError{
			Provider: ProviderName,
			Code:     strconv.Itoa(restErr.Code),
			Status:   restErr.Status,
			Message:  restErr.Message,
		}
	}
	return err
}
