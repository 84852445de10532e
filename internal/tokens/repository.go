package tokens

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the interface for dashboard token storage
type Repository interface {
	Create(ctx context.Context, token *Token) error
	GetWithClinicName(ctx context.Context, token string) (*Token, string, error)
	Delete(ctx context.Context, token string) error
	List(ctx context.Context, clinicID string) ([]*TokenInfo, error)
}

// InMemoryRepository is a Repository backed by maps, used in tests. Clinic
// names come from a caller-supplied lookup.
type InMemoryRepository struct {
	mu          sync.RWMutex
	tokens      map[string]*Token
	clinicNames map[string]string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tokens:      make(map[string]*Token),
		clinicNames: make(map[string]string),
	}
}

// SetClinicName registers the name resolved for a clinic id.
func (r *InMemoryRepository) SetClinicName(clinicID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clinicNames[clinicID] = name
}

// Create stores a token.
func (r *InMemoryRepository) Create(ctx context.Context, token *Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *token
	r.tokens[token.Token] = &stored
	return nil
}

// GetWithClinicName fetches a token and its clinic's display name.
func (r *InMemoryRepository) GetWithClinicName(ctx context.Context, token string) (*Token, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.tokens[token]
	if !ok {
		return nil, "", ErrTokenNotFound
	}
	out := *stored
	return &out, r.clinicNames[stored.ClinicID], nil
}

// Delete removes a token; revocation takes effect immediately.
func (r *InMemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; !ok {
		return ErrTokenNotFound
	}
	delete(r.tokens, token)
	return nil
}

// List returns tokens, newest first, optionally scoped to one clinic.
func (r *InMemoryRepository) List(ctx context.Context, clinicID string) ([]*TokenInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*TokenInfo
	for _, t := range r.tokens {
		if clinicID != "" && t.ClinicID != clinicID {
			continue
		}
		out = append(out, &TokenInfo{Token: *t, ClinicName: r.clinicNames[t.ClinicID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
