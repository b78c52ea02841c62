// Package messaging holds the contract shared by every outbound text
// message provider.
package messaging

import (
	"context"
	"errors"
	"fmt"
)

type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Message is one outbound notification. From and SenderID are alternatives:
// providers use From when set and fall back to SenderID.
type Message struct {
	Channel  Channel
	To       string
	From     string
	SenderID string
	Body     string
}

// Receipt identifies a message accepted by a provider.
type Receipt struct {
	SID string
}

type Sender interface {
	Send(ctx context.Context, msg *Message) (*Receipt, error)
}

// ErrUnsupportedChannel is returned by providers that cannot deliver on the
// requested channel.
var ErrUnsupportedChannel = errors.New("channel not supported by provider")

// ProviderError is a rejection reported by the provider itself, as opposed
// to a transport failure.
type ProviderError struct {
	Provider string
	Code     string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s (code %s)", e.Provider, e.Message, e.Code)
}
