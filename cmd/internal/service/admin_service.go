package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"pawsclinic/cmd/internal/domain/entity"
	"pawsclinic/cmd/internal/domain/sqlite/repository"
	"pawsclinic/cmd/internal/utils"
	"pawsclinic/cmd/internal/utils/apierror"
	"strconv"
	"time"

	"github.com/labstack/gommon/log"
)

// MaxListedAppointments caps every admin listing and CSV export.
const MaxListedAppointments = 200

var csvHeader = []string{
	"id", "created_at", "owner_name", "phone", "email", "pet_name",
	"species", "service", "preferred_date", "preferred_time", "notes",
}

type AppointmentResponse struct {
	ID            int     `json:"id"`
	OwnerName     string  `json:"owner_name"`
	Phone         string  `json:"phone"`
	Email         *string `json:"email"`
	PetName       string  `json:"pet_name"`
	Species       string  `json:"species"`
	Service       string  `json:"service"`
	PreferredDate *string `json:"preferred_date"`
	PreferredTime *string `json:"preferred_time"`
	Notes         *string `json:"notes"`
	CreatedAt     string  `json:"created_at"`
}

type DatabaseExport struct {
	Filename string
	Content  io.ReadCloser
}

type DefaultAdminService struct {
	AppointmentRepo AppointmentRepository
	Clock           func() time.Time
}

func NewAdminService(apptRepo AppointmentRepository) *DefaultAdminService {
	return &DefaultAdminService{AppointmentRepo: apptRepo, Clock: time.Now}
}

func (a *DefaultAdminService) ListAppointments(ctx context.Context) ([]*AppointmentResponse, apierror.ErrorResponse) {
	appts, err := a.AppointmentRepo.FindRecent(ctx, MaxListedAppointments)
	if err != nil {
		log.Errorf("failed to fetch appointments: %v", err)
		return nil, apierror.NewPersistence(err)
	}

	response := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		response[i] = toAppointmentResponse(appt)
	}
	return response, nil
}

// ExportCSV renders the same rows as ListAppointments as CSV.
func (a *DefaultAdminService) ExportCSV(ctx context.Context) ([]byte, apierror.ErrorResponse) {
	appts, apierr := a.ListAppointments(ctx)
	if apierr != nil {
		return nil, apierr
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(csvHeader)
	for _, appt := range appts {
		_ = w.Write([]string{
			strconv.Itoa(appt.ID),
			appt.CreatedAt,
			appt.OwnerName,
			appt.Phone,
			deref(appt.Email),
			appt.PetName,
			appt.Species,
			appt.Service,
			deref(appt.PreferredDate),
			deref(appt.PreferredTime),
			deref(appt.Notes),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Errorf("failed to render appointments csv: %v", err)
		return nil, apierror.InternalServerError
	}
	return buf.Bytes(), nil
}

// ExportDatabase returns a copy of the whole database file. The caller must
// close Content.
func (a *DefaultAdminService) ExportDatabase(ctx context.Context) (*DatabaseExport, apierror.ErrorResponse) {
	content, err := a.AppointmentRepo.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return nil, apierror.DatabaseNotFoundError
		}
		log.Errorf("[DB DOWNLOAD ERROR] %v", err)
		return nil, apierror.InternalServerError
	}

	name := "appointments-backup-" + a.Clock().UTC().Format("2006-01-02") + ".db"
	return &DatabaseExport{Filename: name, Content: content}, nil
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:            appt.ID,
		OwnerName:     appt.OwnerName,
		Phone:         appt.Phone,
		Email:         appt.Email,
		PetName:       appt.PetName,
		Species:       appt.Species,
		Service:       appt.Service,
		PreferredDate: appt.PreferredDate,
		PreferredTime: appt.PreferredTime,
		Notes:         appt.Notes,
		CreatedAt:     utils.FormatEpoch(appt.CreatedAt),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
