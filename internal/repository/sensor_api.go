// internal/repository/sensor_api.go

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"CapIot.dashboard/internal/models"
	"github.com/go-resty/resty/v2"
)

// Repository reads device data from the upstream sensor API.
type Repository interface {
	FetchRaw(ctx context.Context) (RawResponse, error)
	ListDevices(ctx context.Context) (models.DeviceList, error)
}

// RawResponse is an upstream reply kept byte-for-byte.
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (r RawResponse) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// UpstreamStatusError is returned when the sensor API answers with a non-2xx status.
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("sensor API returned status %d: %s", e.StatusCode, e.Body)
}

const maxErrorBodyLen = 200

// NewUpstreamStatusError wraps a non-2xx reply, keeping only the start of its body.
func NewUpstreamStatusError(raw RawResponse) *UpstreamStatusError {
	return &UpstreamStatusError{StatusCode: raw.StatusCode, Body: snippet(raw.Body)}
}

// SensorAPIRepository talks to the upstream sensor API with Basic Auth.
type SensorAPIRepository struct {
	client *resty.Client
	url    string
}

// NewSensorAPIRepository creates a new SensorAPIRepository.
func NewSensorAPIRepository(url, key, secret string, timeout time.Duration) *SensorAPIRepository {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if key != "" || secret != "" {
		client.SetBasicAuth(key, secret)
	}
	return &SensorAPIRepository{
		client: client,
		url:    url,
	}
}

// FetchRaw performs the upstream GET and returns status and body untouched.
// Only transport failures produce an error.
func (r *SensorAPIRepository) FetchRaw(ctx context.Context) (RawResponse, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		Get(r.url)
	if err != nil {
		return RawResponse{}, fmt.Errorf("error requesting sensor API: %w", err)
	}
	return RawResponse{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}, nil
}

// ListDevices fetches and decodes the device list.
func (r *SensorAPIRepository) ListDevices(ctx context.Context) (models.DeviceList, error) {
	raw, err := r.FetchRaw(ctx)
	if err != nil {
		return models.DeviceList{}, err
	}
	return DecodeDeviceList(raw)
}

// DecodeDeviceList turns a raw upstream reply into a device list, rejecting
// non-2xx replies.
func DecodeDeviceList(raw RawResponse) (models.DeviceList, error) {
	if !raw.OK() {
		return models.DeviceList{}, NewUpstreamStatusError(raw)
	}
	var list models.DeviceList
	if err := json.Unmarshal(raw.Body, &list); err != nil {
		return models.DeviceList{}, fmt.Errorf("error decoding sensor API response: %w", err)
	}
	return list, nil
}

func snippet(body []byte) string {
	s := string(body)
	if len(s) > maxErrorBodyLen {
		s = s[:maxErrorBodyLen] + "..."
	}
	return s
}
