package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/config"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/database"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDeviceID = "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	testSecret   = "correct-horse-battery"
)

func newTestService(t *testing.T) *DeviceService {
	t.Helper()
	db, err := database.Open(database.DriverMemory, "")
	require.NoError(t, err)
	require.NoError(t, database.MigrateShared(db))
	return NewDeviceService(db, &config.Config{JWTSecret: "test-secret", JWTAccessExpiry: time.Hour})
}

func TestRegisterIssuesToken(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Register(&dto.DeviceAuthRequest{DeviceID: testDeviceID, Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, testDeviceID, resp.DeviceID)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, testDeviceID, claims["sub"])

	var stored models.Device
	require.NoError(t, svc.db.First(&stored, "id = ?", testDeviceID).Error)
	assert.NotEqual(t, testSecret, stored.SecretHash)
}

func TestRegisterRejects(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register(&dto.DeviceAuthRequest{DeviceID: testDeviceID, Secret: testSecret})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  dto.DeviceAuthRequest
		want error
	}{
		{"duplicate", dto.DeviceAuthRequest{DeviceID: testDeviceID, Secret: testSecret}, ErrDeviceTaken},
		{"not a uuid", dto.DeviceAuthRequest{DeviceID: "phone-1", Secret: testSecret}, ErrInvalidDeviceID},
		{"short secret", dto.DeviceAuthRequest{DeviceID: "0b7f4a6e-6a53-4a5e-9d4b-0e1c2b3a4d5f", Secret: "short"}, ErrWeakSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(&tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestToken(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Register(&dto.DeviceAuthRequest{DeviceID: testDeviceID, Secret: testSecret})
	require.NoError(t, err)

	resp, err := svc.Token(&dto.DeviceAuthRequest{DeviceID: testDeviceID, Secret: testSecret})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Token(&dto.DeviceAuthRequest{DeviceID: testDeviceID, Secret: "wrong-secret-value"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Token(&dto.DeviceAuthRequest{DeviceID: "0b7f4a6e-6a53-4a5e-9d4b-0e1c2b3a4d5f", Secret: testSecret})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
