package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/device"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCorruptRecord   = errors.New("stored record cannot be decoded")
	ErrDuplicateResult = errors.New("result already stored")
)

// Store keeps a device's profile and scan history. Profile and history are
// independent records; there is no transaction spanning both.
type Store interface {
	Load(ctx context.Context) (vibe.UserProfile, error)
	Save(ctx context.Context, profile vibe.UserProfile) error
	AppendResult(ctx context.Context, result vibe.VibeResult) error
	ListResults(ctx context.Context) ([]vibe.VibeResult, error)
	ClearAll(ctx context.Context) error
}

type GormStore struct {
	db       *gorm.DB
	deviceID string
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB, deviceID string) *GormStore {
	return &GormStore{db: db, deviceID: deviceID}
}

// Load returns the stored profile, or the default profile when none exists.
func (s *GormStore) Load(ctx context.Context) (vibe.UserProfile, error) {
	var rec ProfileRecord
	err := s.db.WithContext(ctx).Scopes(device.ForDevice(s.deviceID)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return vibe.DefaultProfile(), nil
	}
	if err != nil {
		return vibe.DefaultProfile(), fmt.Errorf("load profile: %w", err)
	}

	profile := vibe.DefaultProfile()
	if err := json.Unmarshal(rec.Data, &profile); err != nil {
		return vibe.DefaultProfile(), fmt.Errorf("%w: profile: %v", ErrCorruptRecord, err)
	}
	return normalize(profile), nil
}

// Save overwrites the stored profile.
func (s *GormStore) Save(ctx context.Context, profile vibe.UserProfile) error {
	data, err := json.Marshal(normalize(profile))
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	rec := ProfileRecord{DeviceID: s.deviceID, Data: datatypes.JSON(data)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// AppendResult adds a result to the end of the history. Storing the same
// result id twice fails with ErrDuplicateResult.
func (s *GormStore) AppendResult(ctx context.Context, result vibe.VibeResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&ResultRecord{}).Where("id = ?", result.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateResult, result.ID)
	}

	rec := ResultRecord{
		ID:        result.ID,
		DeviceID:  s.deviceID,
		Timestamp: result.Timestamp,
		Data:      datatypes.JSON(data),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

// ListResults returns the history in append order.
func (s *GormStore) ListResults(ctx context.Context) ([]vibe.VibeResult, error) {
	var recs []ResultRecord
	if err := s.db.WithContext(ctx).Scopes(device.ForDevice(s.deviceID)).Order("seq ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	results := make([]vibe.VibeResult, 0, len(recs))
	for _, rec := range recs {
		var r vibe.VibeResult
		if err := json.Unmarshal(rec.Data, &r); err != nil {
			return nil, fmt.Errorf("%w: result %s: %v", ErrCorruptRecord, rec.ID, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// ClearAll erases the device's profile and history.
func (s *GormStore) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(device.ForDevice(s.deviceID)).Delete(&ResultRecord{}).Error; err != nil {
			return fmt.Errorf("clear results: %w", err)
		}
		if err := tx.Scopes(device.ForDevice(s.deviceID)).Delete(&ProfileRecord{}).Error; err != nil {
			return fmt.Errorf("clear profile: %w", err)
		}
		return nil
	})
}

func normalize(p vibe.UserProfile) vibe.UserProfile {
	if p.OnboardingAnswers == nil {
		p.OnboardingAnswers = map[string]interface{}{}
	}
	if p.Badges == nil {
		p.Badges = []string{}
	}
	if !p.Theme.Valid() {
		p.Theme = vibe.ThemeLight
	}
	if p.DailyScanCount < 0 {
		p.DailyScanCount = 0
	}
	if p.Streak < 0 {
		p.Streak = 0
	}
	// A date that cannot be read counts as never scanned.
	if p.LastScanDate != nil {
		if d, err := vibe.ParseDate(string(*p.LastScanDate)); err != nil {
			p.LastScanDate = nil
		} else {
			p.LastScanDate = &d
		}
	}
	return p
}
