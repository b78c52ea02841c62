package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"pawsclinic/cmd/internal/domain/entity"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var (
	ErrPersistence      = errors.New("appointment store unavailable")
	ErrSnapshotNotFound = errors.New("database file not found")
)

var tracer = otel.Tracer("pawsclinic/repository")

type DefaultAppointmentRepository struct {
	db   *gorm.DB
	path string
}

// NewAppointmentRepository wraps db. path is the file backing db and is
// only used to build snapshots.
func NewAppointmentRepository(db *gorm.DB, path string) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db, path: path}
}

// Save inserts appointment and fills in its ID.
func (a *DefaultAppointmentRepository) Save(ctx context.Context, appointment *entity.Appointment) error {
	ctx, span := tracer.Start(ctx, "appointments.save")
	defer span.End()

	err := a.db.WithContext(ctx).Create(appointment).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// FindRecent returns at most limit appointments, newest first. Rows sharing a
// created_at are ordered by id so the later insert comes first.
func (a *DefaultAppointmentRepository) FindRecent(ctx context.Context, limit int) ([]*entity.Appointment, error) {
	if limit <= 0 {
		return []*entity.Appointment{}, nil
	}

	ctx, span := tracer.Start(ctx, "appointments.find_recent")
	defer span.End()

	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&appts).Error

	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return appts, nil
}

// Snapshot copies the committed state of the database into a temporary file
// and returns it for reading. Writes running at the same time are not blocked,
// so they may or may not be part of the copy. Closing the reader removes the
// temporary file.
func (a *DefaultAppointmentRepository) Snapshot(ctx context.Context) (io.ReadCloser, error) {
	if _, err := os.Stat(a.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "appointments.snapshot")
	defer span.End()

	dir, err := os.MkdirTemp("", "appointments-snapshot-")
	if err != nil {
		return nil, err
	}

	target := filepath.Join(dir, "snapshot.db")
	err = a.db.WithContext(ctx).Exec("VACUUM INTO ?", target).Error
	if err != nil {
		_ = os.RemoveAll(dir)
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	file, err := os.Open(target)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return &snapshotFile{File: file, dir: dir}, nil
}

type snapshotFile struct {
	*os.File
	dir string
}

func (s *snapshotFile) Close() error {
	err := s.File.Close()
	_ = os.RemoveAll(s.dir)
	return err
}
