package tokens

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rafaleads/rafaleads/internal/observability/metrics"
)

const tokenBytes = 32

// Service implements token issuance, validation, and revocation on top of a
// Repository.
type Service struct {
	repo        Repository
	metrics     *metrics.Metrics
	defaultDays int
	now         func() time.Time
}

// NewService creates a token service. defaultDays is the validity window
// applied when an issue request does not specify one.
func NewService(repo Repository, m *metrics.Metrics, defaultDays int) *Service {
	if defaultDays <= 0 {
		defaultDays = 365
	}
	return &Service{
		repo:        repo,
		metrics:     m,
		defaultDays: defaultDays,
		now:         time.Now,
	}
}

// SetNow overrides the clock, used in tests.
func (s *Service) SetNow(now func() time.Time) { s.now = now }

// Validate checks a bearer token. All failure modes collapse to
// Validation{Valid: false}; only storage faults surface as an error.
func (s *Service) Validate(ctx context.Context, token string) (*Validation, error) {
	stored, clinicName, err := s.repo.GetWithClinicName(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			s.metrics.ObserveTokenValidation(false)
			return &Validation{Valid: false}, nil
		}
		return nil, fmt.Errorf("tokens: validate: %w", err)
	}
	if !stored.Active || s.now().After(stored.ExpiresAt) {
		s.metrics.ObserveTokenValidation(false)
		return &Validation{Valid: false}, nil
	}
	s.metrics.ObserveTokenValidation(true)
	return &Validation{
		Valid:      true,
		ClinicID:   stored.ClinicID,
		ClinicName: clinicName,
	}, nil
}

// Issue mints a new token for a clinic. days <= 0 falls back to the service
// default validity window.
func (s *Service) Issue(ctx context.Context, clinicID string, days int) (*Token, error) {
	if days <= 0 {
		days = s.defaultDays
	}
	value, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("tokens: issue: %w", err)
	}
	now := s.now().UTC()
	token := &Token{
		Token:     value,
		ClinicID:  clinicID,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, days),
		Active:    true,
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("tokens: issue: %w", err)
	}
	return token, nil
}

// Revoke deletes a token. The next validation of the same value fails.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, token); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return err
		}
		return fmt.Errorf("tokens: revoke: %w", err)
	}
	return nil
}

// List returns issued tokens, optionally scoped to one clinic.
func (s *Service) List(ctx context.Context, clinicID string) ([]*TokenInfo, error) {
	infos, err := s.repo.List(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("tokens: list: %w", err)
	}
	return infos, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
