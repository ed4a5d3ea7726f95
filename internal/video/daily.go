// Package video provisions video rooms through a Daily-compatible REST API.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/coachforge/coachforge-backend/internal/config"
)

const dailyAPIURL = "https://api.daily.co/v1/rooms"

// Room is a provisioned video room.
type Room struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Provisioner creates video rooms for sessions.
type Provisioner interface {
	CreateRoom(ctx context.Context, sessionID uuid.UUID) (*Room, error)
}

// DailyProvisioner implements Provisioner against the Daily rooms API.
type DailyProvisioner struct {
	config config.VideoConfig
	client *http.Client
}

// NewDailyProvisioner creates a Daily provisioner
func NewDailyProvisioner(cfg config.VideoConfig) *DailyProvisioner {
	return &DailyProvisioner{
		config: cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type dailyRoomRequest struct {
	Name       string              `json:"name"`
	Privacy    string              `json:"privacy"`
	Properties dailyRoomProperties `json:"properties"`
}

type dailyRoomProperties struct {
	EnableRecording string `json:"enable_recording"`
	EnableChat      bool   `json:"enable_chat"`
	Exp             int64  `json:"exp"`
}

// CreateRoom provisions a private room with a two-hour expiry.
func (p *DailyProvisioner) CreateRoom(ctx context.Context, sessionID uuid.UUID) (*Room, error) {
	reqBody := dailyRoomRequest{
		Name:    RoomName(sessionID),
		Privacy: "private",
		Properties: dailyRoomProperties{
			EnableRecording: "cloud",
			EnableChat:      true,
			Exp:             time.Now().Add(2 * time.Hour).Unix(),
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", dailyAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daily API error %d: %s", resp.StatusCode, string(respBody))
	}

	var room Room
	if err := json.Unmarshal(respBody, &room); err != nil {
		return nil, fmt.Errorf("failed to parse daily response: %w", err)
	}

	return &room, nil
}

// RoomName derives the deterministic room name for a session.
func RoomName(sessionID uuid.UUID) string {
	return "cf-" + sessionID.String()[:8]
}

// PlaceholderRoom builds the degraded room reference used when provisioning
// fails: session start must not block on the video vendor.
func PlaceholderRoom(domain string, sessionID uuid.UUID) *Room {
	if domain == "" {
		domain = "mock"
	}
	name := RoomName(sessionID)
	return &Room{
		Name: name,
		URL:  fmt.Sprintf("https://%s.daily.co/%s", domain, name),
	}
}
