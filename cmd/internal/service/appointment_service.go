package service

import (
	"bytes"
	"context"
	"io"
	"pawsclinic/cmd/internal/domain/entity"
	"pawsclinic/cmd/internal/integration/messaging"
	"pawsclinic/cmd/internal/utils"
	"pawsclinic/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

const DefaultSpecies = "Unknown"

type AppointmentRepository interface {
	Save(ctx context.Context, appointment *entity.Appointment) error
	FindRecent(ctx context.Context, limit int) ([]*entity.Appointment, error)
	Snapshot(ctx context.Context) (io.ReadCloser, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, sub *Submission) (*messaging.Receipt, apierror.ErrorResponse)
}

// Consent only becomes true for the JSON literal true. Strings, numbers and
// null all decode to false.
type Consent bool

func (c *Consent) UnmarshalJSON(raw []byte) error {
	*c = Consent(bytes.Equal(bytes.TrimSpace(raw), []byte("true")))
	return nil
}

type AppointmentRequest struct {
	OwnerName string  `json:"ownerName" validate:"notblank"`
	Phone     string  `json:"phone" validate:"notblank"`
	Email     string  `json:"email"`
	PetName   string  `json:"petName" validate:"notblank"`
	Species   string  `json:"species"`
	Service   string  `json:"service" validate:"notblank"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Message   string  `json:"message"`
	Agree     Consent `json:"agree" validate:"consent"`
}

// Stage is how far a submission got through intake.
type Stage string

const (
	StageReceived   Stage = "received"
	StageValidated  Stage = "validated"
	StageDispatched Stage = "dispatched"
	StagePersisted  Stage = "persisted"
)

type IntakeResult struct {
	// SID is the provider's message id, nil when nothing was sent.
	SID   *string
	Stage Stage
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	Notifier        Notifier
	Validate        *validator.Validate
	Now             func() int64
}

func NewAppointmentService(apptRepo AppointmentRepository, notifier Notifier, validate *validator.Validate) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		Notifier:        notifier,
		Validate:        validate,
		Now:             utils.NowUTC,
	}
}

// SubmitAppointment validates req, notifies the clinic and stores the request.
// A failed notification ends the request without storing anything. A failed
// save after a successful notification is only logged.
func (a *DefaultAppointmentService) SubmitAppointment(ctx context.Context, req *AppointmentRequest) (*IntakeResult, apierror.ErrorResponse) {
	result := &IntakeResult{Stage: StageReceived}

	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		apierr := apierror.FromValidationError(valerr)
		if ferr, ok := apierr.(*apierror.FieldError); ok {
			log.Debugf("rejected submission, invalid fields: %v", ferr.Fields)
		}
		return nil, apierr
	}
	if req.Species == "" {
		req.Species = DefaultSpecies
	}
	result.Stage = StageValidated

	receipt, apierr := a.Notifier.Dispatch(ctx, toSubmission(req))
	if apierr != nil {
		log.Errorf("failed to notify clinic (%s): %v", apierr.Kind(), apierr)
		return nil, apierr
	}
	result.Stage = StageDispatched
	if receipt != nil && receipt.SID != "" {
		sid := receipt.SID
		result.SID = &sid
	}

	appointment := toAppointment(req, a.Now())
	err := a.AppointmentRepo.Save(ctx, appointment)
	if err != nil {
		log.Errorf("[DB ERROR] failed to save appointment: %v", err)
		return result, nil
	}
	result.Stage = StagePersisted
	log.Infof("[DB] saved appointment id %d", appointment.ID)
	return result, nil
}

func toSubmission(req *AppointmentRequest) *Submission {
	return &Submission{
		OwnerName: req.OwnerName,
		Phone:     req.Phone,
		Email:     req.Email,
		PetName:   req.PetName,
		Species:   req.Species,
		Service:   req.Service,
		Date:      req.Date,
		Time:      req.Time,
		Notes:     req.Message,
	}
}

func toAppointment(req *AppointmentRequest, now int64) *entity.Appointment {
	return &entity.Appointment{
		OwnerName:     req.OwnerName,
		Phone:         req.Phone,
		Email:         optional(req.Email),
		PetName:       req.PetName,
		Species:       req.Species,
		Service:       req.Service,
		PreferredDate: optional(req.Date),
		PreferredTime: optional(req.Time),
		Notes:         optional(utils.SanitizeLine(req.Message)),
		CreatedAt:     now,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
