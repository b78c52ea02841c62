package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"pawsclinic/cmd/internal/domain/entity"
	"pawsclinic/cmd/internal/domain/sqlite/repository"
	"pawsclinic/cmd/internal/integration/messaging"
	"pawsclinic/cmd/internal/utils/apierror"
	"pawsclinic/cmd/internal/utils/validators"
	"testing"

	"github.com/go-playground/validator/v10"
)

type fakeRepo struct {
	saveFn     func(ctx context.Context, a *entity.Appointment) error
	findFn     func(ctx context.Context, limit int) ([]*entity.Appointment, error)
	snapshotFn func(ctx context.Context) (io.ReadCloser, error)
	saved      []*entity.Appointment
}

func (f *fakeRepo) Save(ctx context.Context, a *entity.Appointment) error {
	if f.saveFn != nil {
		if err := f.saveFn(ctx, a); err != nil {
			return err
		}
	}
	a.ID = len(f.saved) + 1
	f.saved = append(f.saved, a)
	return nil
}

func (f *fakeRepo) FindRecent(ctx context.Context, limit int) ([]*entity.Appointment, error) {
	if f.findFn == nil {
		return nil, nil
	}
	return f.findFn(ctx, limit)
}

func (f *fakeRepo) Snapshot(ctx context.Context) (io.ReadCloser, error) {
	if f.snapshotFn == nil {
		return nil, repository.ErrSnapshotNotFound
	}
	return f.snapshotFn(ctx)
}

type fakeNotifier struct {
	dispatchFn func(ctx context.Context, sub *Submission) (*messaging.Receipt, apierror.ErrorResponse)
	calls      []*Submission
}

func (f *fakeNotifier) Dispatch(ctx context.Context, sub *Submission) (*messaging.Receipt, apierror.ErrorResponse) {
	f.calls = append(f.calls, sub)
	if f.dispatchFn == nil {
		return &messaging.Receipt{SID: "SM1"}, nil
	}
	return f.dispatchFn(ctx, sub)
}

func newValidator() *validator.Validate {
	v := validator.New()
	validators.Register(v)
	return v
}

func validRequest() *AppointmentRequest {
	return &AppointmentRequest{
		OwnerName: "Jane",
		Phone:     "555-1000",
		PetName:   "Rex",
		Service:   "Checkup",
		Agree:     true,
	}
}

func newIntake(repo *fakeRepo, notifier *fakeNotifier) *DefaultAppointmentService {
	svc := NewAppointmentService(repo, notifier, newValidator())
	svc.Now = func() int64 { return 1_700_000_000_000 }
	return svc
}

func TestSubmitRejectsInvalidSubmissions(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *AppointmentRequest)
	}{
		{"missing owner", func(r *AppointmentRequest) { r.OwnerName = "" }},
		{"blank owner", func(r *AppointmentRequest) { r.OwnerName = "   " }},
		{"missing phone", func(r *AppointmentRequest) { r.Phone = "" }},
		{"missing pet", func(r *AppointmentRequest) { r.PetName = "" }},
		{"missing service", func(r *AppointmentRequest) { r.Service = "" }},
		{"no consent", func(r *AppointmentRequest) { r.Agree = false }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			notifier := &fakeNotifier{}
			req := validRequest()
			tc.mutate(req)

			_, apierr := newIntake(repo, notifier).SubmitAppointment(context.Background(), req)
			if apierr == nil || apierr.Kind() != apierror.KindValidation || apierr.Code() != 400 {
				t.Fatalf("expected validation error, got %v", apierr)
			}
			if len(notifier.calls) != 0 {
				t.Fatalf("dispatch must not be attempted")
			}
			if len(repo.saved) != 0 {
				t.Fatalf("nothing must be saved")
			}
		})
	}
}

func TestConsentOnlyAcceptsLiteralTrue(t *testing.T) {
	cases := map[string]bool{
		`{"agree":true}`:    true,
		`{"agree":"true"}`:  false,
		`{"agree":1}`:       false,
		`{"agree":false}`:   false,
		`{"agree":null}`:    false,
		`{"agree":"yes"}`:   false,
		`{}`:                false,
		`{"agree": true }`:  true,
		`{"agree":[true]}`:  false,
		`{"agree":{"a":1}}`: false,
	}

	for raw, want := range cases {
		var req AppointmentRequest
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if bool(req.Agree) != want {
			t.Fatalf("%s: expected agree=%v", raw, want)
		}
	}
}

func TestSubmitSuccessPersists(t *testing.T) {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{}
	req := validRequest()
	req.OwnerName = "  Jane  "
	req.Message = "line one\nline two"

	result, apierr := newIntake(repo, notifier).SubmitAppointment(context.Background(), req)
	if apierr != nil {
		t.Fatalf("unexpected error: %v", apierr)
	}
	if result.SID == nil || *result.SID != "SM1" {
		t.Fatalf("expected sid SM1, got %v", result.SID)
	}
	if result.Stage != StagePersisted {
		t.Fatalf("expected stage persisted, got %s", result.Stage)
	}

	if len(notifier.calls) != 1 || notifier.calls[0].Species != DefaultSpecies {
		t.Fatalf("expected one dispatch with default species")
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one saved row, got %d", len(repo.saved))
	}
	saved := repo.saved[0]
	if saved.OwnerName != "Jane" || saved.Species != DefaultSpecies || saved.CreatedAt != 1_700_000_000_000 {
		t.Fatalf("unexpected saved row: %+v", saved)
	}
	if saved.Email != nil || saved.PreferredDate != nil || saved.PreferredTime != nil {
		t.Fatalf("empty optionals must be stored as NULL")
	}
	if saved.Notes == nil || *saved.Notes != "line one line two" {
		t.Fatalf("notes must be sanitized, got %v", saved.Notes)
	}
}

func TestSubmitWithoutProviderReturnsNilSID(t *testing.T) {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{dispatchFn: func(context.Context, *Submission) (*messaging.Receipt, apierror.ErrorResponse) {
		return &messaging.Receipt{}, nil
	}}

	result, apierr := newIntake(repo, notifier).SubmitAppointment(context.Background(), validRequest())
	if apierr != nil {
		t.Fatalf("unexpected error: %v", apierr)
	}
	if result.SID != nil {
		t.Fatalf("expected nil sid, got %s", *result.SID)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("record must still be saved")
	}
}

func TestSubmitDeliveryFailureSkipsPersistence(t *testing.T) {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{dispatchFn: func(context.Context, *Submission) (*messaging.Receipt, apierror.ErrorResponse) {
		return nil, apierror.NewDelivery("The 'To' number is not a valid phone number.")
	}}

	_, apierr := newIntake(repo, notifier).SubmitAppointment(context.Background(), validRequest())
	if apierr == nil || apierr.Kind() != apierror.KindDelivery || apierr.Code() != 500 {
		t.Fatalf("expected delivery error, got %v", apierr)
	}
	if apierr.Error() != "The 'To' number is not a valid phone number." {
		t.Fatalf("expected provider message, got %q", apierr.Error())
	}
	if len(repo.saved) != 0 {
		t.Fatalf("nothing must be saved after a delivery failure")
	}
}

func TestSubmitConfigurationFailureSkipsPersistence(t *testing.T) {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{dispatchFn: func(context.Context, *Submission) (*messaging.Receipt, apierror.ErrorResponse) {
		return nil, apierror.NewConfiguration("WHATSAPP_FROM not configured")
	}}

	_, apierr := newIntake(repo, notifier).SubmitAppointment(context.Background(), validRequest())
	if apierr == nil || apierr.Kind() != apierror.KindConfiguration {
		t.Fatalf("expected configuration error, got %v", apierr)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("nothing must be saved after a configuration failure")
	}
}

func TestSubmitPersistenceFailureStillSucceeds(t *testing.T) {
	repo := &fakeRepo{saveFn: func(context.Context, *entity.Appointment) error {
		return errors.Join(repository.ErrPersistence, errors.New("disk I/O error"))
	}}
	notifier := &fakeNotifier{}

	result, apierr := newIntake(repo, notifier).SubmitAppointment(context.Background(), validRequest())
	if apierr != nil {
		t.Fatalf("persistence failure must not surface, got %v", apierr)
	}
	if result.SID == nil || *result.SID != "SM1" {
		t.Fatalf("expected sid SM1")
	}
	if result.Stage != StageDispatched {
		t.Fatalf("expected stage dispatched, got %s", result.Stage)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("no row must be recorded")
	}
}
