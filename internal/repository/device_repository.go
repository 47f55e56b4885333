package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/absensi-rfid-api/internal/models"
)

// DeviceRepository reads the registered scanner devices.
type DeviceRepository struct {
	db *sqlx.DB
}

// NewDeviceRepository constructs the repository.
func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// FindActiveByID returns the active device with the given id, nil when
// unknown or deactivated.
func (r *DeviceRepository) FindActiveByID(ctx context.Context, id string) (*models.ScanDevice, error) {
	query := `SELECT id, name, secret_hash, active, created_at FROM scan_devices WHERE id = $1 AND active`
	var device models.ScanDevice
	if err := r.db.GetContext(ctx, &device, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find scan device: %w", err)
	}
	return &device, nil
}
