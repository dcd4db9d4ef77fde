package service

import (
	"context"
	"fmt"

	"CapIot.dashboard/internal/repository"
)

// ProxyService forwards device requests to the upstream sensor API.
type ProxyService struct {
	repo repository.Repository
}

// NewProxyService creates a new ProxyService.
func NewProxyService(repo repository.Repository) *ProxyService {
	return &ProxyService{
		repo: repo,
	}
}

// Devices returns the upstream reply untouched when it is a 2xx. Transport
// failures and non-2xx replies are errors; a non-2xx reply is reported as a
// *repository.UpstreamStatusError.
func (s *ProxyService) Devices(ctx context.Context) (repository.RawResponse, error) {
	raw, err := s.repo.FetchRaw(ctx)
	if err != nil {
		return repository.RawResponse{}, fmt.Errorf("error fetching devices: %w", err)
	}
	if !raw.OK() {
		return repository.RawResponse{}, fmt.Errorf("error fetching devices: %w", repository.NewUpstreamStatusError(raw))
	}
	return raw, nil
}
