package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/config"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/device"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minSecretLength = 16

var (
	ErrDeviceTaken        = errors.New("device already registered")
	ErrInvalidCredentials = errors.New("invalid device id or secret")
	ErrInvalidDeviceID    = errors.New("device_id must be a UUID")
	ErrWeakSecret         = fmt.Errorf("secret must be at least %d characters", minSecretLength)
)

// DeviceService registers handsets and issues their access tokens.
type DeviceService struct {
	db  *gorm.DB
	cfg *config.Config
	now func() time.Time
}

func NewDeviceService(db *gorm.DB, cfg *config.Config) *DeviceService {
	return &DeviceService{db: db, cfg: cfg, now: time.Now}
}

func (s *DeviceService) Register(req *dto.DeviceAuthRequest) (*dto.DeviceAuthResponse, error) {
	id, err := device.ParseID(req.DeviceID)
	if err != nil {
		return nil, ErrInvalidDeviceID
	}
	if len(req.Secret) < minSecretLength {
		return nil, ErrWeakSecret
	}

	var existing models.Device
	if err := s.db.Where("id = ?", id).First(&existing).Error; err == nil {
		return nil, ErrDeviceTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up device: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	record := models.Device{
		ID:         id,
		SecretHash: string(hash),
		LastSeenAt: s.now(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	return s.issueToken(id)
}

func (s *DeviceService) Token(req *dto.DeviceAuthRequest) (*dto.DeviceAuthResponse, error) {
	id, err := device.ParseID(req.DeviceID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var record models.Device
	if err := s.db.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.SecretHash), []byte(req.Secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.db.Model(&record).Update("last_seen_at", s.now())

	return s.issueToken(id)
}

func (s *DeviceService) issueToken(deviceID string) (*dto.DeviceAuthResponse, error) {
	now := s.now()
	exp := now.Add(s.cfg.JWTAccessExpiry)
	claims := jwt.MapClaims{
		"sub": deviceID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.DeviceAuthResponse{
		AccessToken: signed,
		DeviceID:    deviceID,
		ExpiresAt:   exp.Unix(),
	}, nil
}
