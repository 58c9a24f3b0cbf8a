package api

import "time"

type LoginRequest struct {
	Participant string `json:"participant"`
	Passphrase  string `json:"passphrase"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
