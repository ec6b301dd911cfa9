package dto

type DeviceAuthRequest struct {
	DeviceID string `json:"device_id"`
	Secret   string `json:"secret"`
}

type DeviceAuthResponse struct {
	AccessToken string `json:"access_token"`
	DeviceID    string `json:"device_id"`
	ExpiresAt   int64  `json:"expires_at"`
}
