package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	"github.com/noah-isme/absensi-rfid-api/internal/models"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
)

type deviceFinder interface {
	FindActiveByID(ctx context.Context, id string) (*models.ScanDevice, error)
}

// DeviceAuthService exchanges scanner credentials for short-lived bearer
// tokens and validates them on the scan intake path.
type DeviceAuthService struct {
	devices   deviceFinder
	secret    []byte
	ttl       time.Duration
	issuer    string
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// DeviceAuthServiceParams groups constructor dependencies.
type DeviceAuthServiceParams struct {
	Devices  deviceFinder
	Secret   string
	TTL      time.Duration
	Issuer   string
	Validate *validator.Validate
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewDeviceAuthService constructs the device auth service.
func NewDeviceAuthService(params DeviceAuthServiceParams) *DeviceAuthService {
	validate := params.Validate
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DeviceAuthService{
		devices:   params.Devices,
		secret:    []byte(params.Secret),
		ttl:       ttl,
		issuer:    params.Issuer,
		validator: validate,
		logger:    logger,
		now:       now,
	}
}

// IssueToken verifies the device secret against the stored bcrypt hash and
// mints a signed token. Unknown devices and bad secrets answer identically.
func (s *DeviceAuthService) IssueToken(ctx context.Context, req dto.DeviceTokenRequest) (*dto.DeviceTokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "device_id and secret are required")
	}

	device, err := s.devices.FindActiveByID(ctx, req.DeviceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}
	if device == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid device credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(device.SecretHash), []byte(req.Secret)); err != nil {
		s.logger.Warn("device secret mismatch", zap.String("device_id", device.ID))
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid device credentials")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := models.DeviceClaims{
		DeviceID:   device.ID,
		DeviceName: device.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   device.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign device token")
	}

	s.logger.Info("device token issued",
		zap.String("device_id", device.ID),
		zap.Time("expires_at", expiresAt),
	)

	return &dto.DeviceTokenResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and verifies a device bearer token.
func (s *DeviceAuthService) ValidateToken(tokenString string) (*models.DeviceClaims, error) {
	claims := &models.DeviceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired device token")
	}
	if claims.DeviceID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired device token")
	}
	return claims, nil
}
