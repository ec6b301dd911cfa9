package store

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/database"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverMemory, "")
	require.NoError(t, err)
	require.NoError(t, database.MigrateModels(db, Models()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func sampleResult(id string, score int) vibe.VibeResult {
	r := vibe.NewResult(vibe.VibeReport{
		Score:   score,
		Verdict: vibe.VerdictYes,
		FixTip:  "Roll the sleeves once.",
		DetailedStats: vibe.DetailedStats{
			ColorHarmony: 80, Symmetry: 70, FitAccuracy: 75, TextureQuality: 60, Composition: 90,
		},
		Insights: vibe.Insights{
			Lighting: 55, Style: 81, Cleanliness: 90, Grooming: 77, Confidence: 68, Alignment: 84,
		},
	}, "First Date", "data:image/jpeg;base64,AAAA", "", time.UnixMilli(1_700_000_000_000))
	r.ID = id
	return r
}

func TestLoadReturnsDefaultsWhenEmpty(t *testing.T) {
	t.Parallel()

	s := NewGormStore(newTestDB(t), "11111111-1111-1111-1111-111111111111")
	p, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, vibe.DefaultProfile(), p)
	assert.False(t, p.Onboarded)
	assert.True(t, p.NotificationsEnabled)
	assert.Equal(t, vibe.ThemeLight, p.Theme)
	assert.Nil(t, p.LastScanDate)
}

func TestSaveOverwritesProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewGormStore(newTestDB(t), "22222222-2222-2222-2222-222222222222")

	p := vibe.DefaultProfile()
	p.Onboarded = true
	p.OnboardingAnswers["goal"] = "Work presence"
	require.NoError(t, s.Save(ctx, p))

	p = vibe.RecordScan(p, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	p.Theme = vibe.ThemeDark
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Onboarded)
	assert.Equal(t, vibe.ThemeDark, got.Theme)
	assert.Equal(t, 1, got.Streak)
	assert.Equal(t, 1, got.DailyScanCount)
	require.NotNil(t, got.LastScanDate)
	assert.Equal(t, vibe.Date("2026-05-01"), *got.LastScanDate)
	assert.Equal(t, "Work presence", got.OnboardingAnswers["goal"])
	assert.Equal(t, []string{"first_scan"}, got.Badges)
}

func TestAppendAndListResults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewGormStore(newTestDB(t), "33333333-3333-3333-3333-333333333333")

	empty, err := s.ListResults(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := sampleResult("r-1", 40)
	second := sampleResult("r-2", 82)
	improved := "data:image/png;base64,BBBB"
	second.ImprovedImageURL = &improved

	require.NoError(t, s.AppendResult(ctx, first))
	require.NoError(t, s.AppendResult(ctx, second))

	got, err := s.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0])
	assert.Equal(t, second, got[1])

	third := sampleResult("r-3", 12)
	require.NoError(t, s.AppendResult(ctx, third))

	got, err = s.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, first, got[0])
	assert.Equal(t, second, got[1])
}

func TestAppendResultRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewGormStore(newTestDB(t), "44444444-4444-4444-4444-444444444444")

	original := sampleResult("dup", 50)
	require.NoError(t, s.AppendResult(ctx, original))

	changed := sampleResult("dup", 99)
	err := s.AppendResult(ctx, changed)
	require.ErrorIs(t, err, ErrDuplicateResult)

	got, err := s.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 50, got[0].Score)
}

func TestDevicesAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	a := NewGormStore(db, "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	b := NewGormStore(db, "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")

	p := vibe.DefaultProfile()
	p.IsPremium = true
	require.NoError(t, a.Save(ctx, p))
	require.NoError(t, a.AppendResult(ctx, sampleResult("a-1", 70)))

	gotB, err := b.Load(ctx)
	require.NoError(t, err)
	assert.False(t, gotB.IsPremium)

	resultsB, err := b.ListResults(ctx)
	require.NoError(t, err)
	assert.Empty(t, resultsB)

	require.NoError(t, b.ClearAll(ctx))
	resultsA, err := a.ListResults(ctx)
	require.NoError(t, err)
	assert.Len(t, resultsA, 1)
}

func TestClearAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewGormStore(newTestDB(t), "55555555-5555-5555-5555-555555555555")

	p := vibe.DefaultProfile()
	p.Onboarded = true
	require.NoError(t, s.Save(ctx, p))
	require.NoError(t, s.AppendResult(ctx, sampleResult("c-1", 10)))

	require.NoError(t, s.ClearAll(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, vibe.DefaultProfile(), got)

	results, err := s.ListResults(ctx)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLoadCorruptProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	deviceID := "66666666-6666-6666-6666-666666666666"
	require.NoError(t, db.Create(&ProfileRecord{DeviceID: deviceID, Data: []byte(`{"onboarded":"maybe"}`)}).Error)

	got, err := NewGormStore(db, deviceID).Load(ctx)
	require.ErrorIs(t, err, ErrCorruptRecord)
	assert.Equal(t, vibe.DefaultProfile(), got)
}

func TestLoadDropsUnreadableScanDate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	tests := []struct {
		name     string
		deviceID string
		date     string
		want     *vibe.Date
	}{
		{"malformed", "77777777-7777-7777-7777-777777777777", "14/03/2026", nil},
		{"impossible day", "88888888-8888-8888-8888-888888888888", "2026-02-30", nil},
		{"valid", "99999999-9999-9999-9999-999999999999", "2026-03-14", func() *vibe.Date { d := vibe.Date("2026-03-14"); return &d }()},
	}
	for _, tt := range tests {
		data := []byte(`{"onboarded":true,"dailyScanCount":1,"lastScanDate":"` + tt.date + `"}`)
		require.NoError(t, db.Create(&ProfileRecord{DeviceID: tt.deviceID, Data: data}).Error)

		got, err := NewGormStore(db, tt.deviceID).Load(ctx)
		require.NoError(t, err, tt.name)
		assert.True(t, got.Onboarded, tt.name)
		assert.Equal(t, tt.want, got.LastScanDate, tt.name)
	}
}
