package service

import (
	"context"
	"errors"
	"pawsclinic/cmd/internal/integration/messaging"
	"pawsclinic/cmd/internal/utils"
	"pawsclinic/cmd/internal/utils/apierror"
	"strings"

	"github.com/labstack/gommon/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const whatsAppPrefix = "whatsapp:"

var tracer = otel.Tracer("pawsclinic/service")

// NotificationConfig is the static delivery setup. The channel never changes
// per request.
type NotificationConfig struct {
	WhatsAppEnabled bool
	WhatsAppFrom    string
	Destination     string
	SMSFromNumber   string
	SMSSenderID     string
}

// Submission is a validated appointment request as seen by the notifier.
type Submission struct {
	OwnerName string
	Phone     string
	Email     string
	PetName   string
	Species   string
	Service   string
	Date      string
	Time      string
	Notes     string
}

type DefaultNotificationService struct {
	Sender messaging.Sender
	Config NotificationConfig
}

// NewNotificationService builds the dispatcher. sender may be nil when no
// provider could be set up; messages are then skipped with a warning.
func NewNotificationService(sender messaging.Sender, cfg NotificationConfig) *DefaultNotificationService {
	return &DefaultNotificationService{Sender: sender, Config: cfg}
}

// FormatMessage renders the text sent to clinic staff.
func FormatMessage(sub *Submission) string {
	var b strings.Builder
	b.WriteString("New Appointment Request:\n")
	b.WriteString("Owner: " + utils.SanitizeLine(sub.OwnerName) + " (" + utils.SanitizeLine(sub.Phone) + ")\n")
	if sub.Email != "" {
		b.WriteString("Email: " + utils.SanitizeLine(sub.Email) + "\n")
	}
	b.WriteString("Pet: " + utils.SanitizeLine(sub.PetName) + " (" + utils.SanitizeLine(sub.Species) + ")\n")
	b.WriteString("Service: " + utils.SanitizeLine(sub.Service) + "\n")
	if sub.Date != "" || sub.Time != "" {
		b.WriteString("Preferred: " + utils.SanitizeLine(sub.Date) + " " + utils.SanitizeLine(sub.Time) + "\n")
	}
	if sub.Notes != "" {
		b.WriteString("Notes: " + utils.SanitizeLine(sub.Notes))
	}
	return b.String()
}

// Dispatch formats sub and hands it to the provider. A nil SID in the receipt
// means no provider was available and nothing was sent.
func (n *DefaultNotificationService) Dispatch(ctx context.Context, sub *Submission) (*messaging.Receipt, apierror.ErrorResponse) {
	msg, apierr := n.buildMessage(FormatMessage(sub))
	if apierr != nil {
		return nil, apierr
	}

	if n.Sender == nil {
		log.Warn("[WARN] messaging provider not available; skipping send")
		return &messaging.Receipt{}, nil
	}

	ctx, span := tracer.Start(ctx, "notification.dispatch",
		trace.WithAttributes(attribute.String("messaging.channel", string(msg.Channel))))
	defer span.End()

	receipt, err := n.Sender.Send(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		log.Errorf("[SMS ERROR] %v", err)
		return nil, toDeliveryError(err)
	}

	if receipt == nil {
		receipt = &messaging.Receipt{}
	}
	log.Infof("[SMS] sent, sid=%s", receipt.SID)
	return receipt, nil
}

// buildMessage picks the channel and sender identity. Missing configuration
// fails here, before anything is sent.
func (n *DefaultNotificationService) buildMessage(body string) (*messaging.Message, apierror.ErrorResponse) {
	cfg := n.Config
	to := strings.TrimSpace(cfg.Destination)
	if to == "" {
		return nil, apierror.NewConfiguration("CLINIC_SMS_TO not configured")
	}

	if cfg.WhatsAppEnabled {
		from := strings.TrimSpace(cfg.WhatsAppFrom)
		if from == "" {
			return nil, apierror.NewConfiguration("WHATSAPP_FROM not configured")
		}
		if !strings.HasPrefix(from, whatsAppPrefix) {
			from = whatsAppPrefix + from
		}
		return &messaging.Message{
			Channel: messaging.ChannelWhatsApp,
			To:      whatsAppPrefix + strings.TrimPrefix(to, whatsAppPrefix),
			From:    from,
			Body:    body,
		}, nil
	}

	msg := &messaging.Message{Channel: messaging.ChannelSMS, To: to, Body: body}
	switch {
	case strings.TrimSpace(cfg.SMSFromNumber) != "":
		msg.From = strings.TrimSpace(cfg.SMSFromNumber)
	case strings.TrimSpace(cfg.SMSSenderID) != "":
		msg.SenderID = strings.TrimSpace(cfg.SMSSenderID)
	default:
		return nil, apierror.NewConfiguration("No SMS sender configured (a from number or a sender id is required)")
	}
	return msg, nil
}

func toDeliveryError(err error) apierror.ErrorResponse {
	if errors.Is(err, messaging.ErrUnsupportedChannel) {
		return apierror.NewConfiguration("Configured messaging provider does not support this channel")
	}
	var perr *messaging.ProviderError
	if errors.As(err, &perr) {
		return apierror.NewDelivery(perr.Message)
	}
	return apierror.NewDelivery(err.Error())
}
