package clinics

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for clinic storage
type Repository interface {
	Create(ctx context.Context, clinic *Clinic) (*Clinic, error)
	Upsert(ctx context.Context, clinic *Clinic) (created bool, err error)
	GetByID(ctx context.Context, clinicID string) (*Clinic, error)
	List(ctx context.Context) ([]*Clinic, error)
}

// InMemoryRepository is a Repository backed by a map, used in tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	clinics map[string]*Clinic
	now     func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		clinics: make(map[string]*Clinic),
		now:     time.Now,
	}
}

// Create inserts a clinic, failing when the id is already taken.
func (r *InMemoryRepository) Create(ctx context.Context, clinic *Clinic) (*Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clinics[clinic.ClinicID]; ok {
		return nil, ErrClinicExists
	}

	stored := *clinic
	stored.CreatedAt = r.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.clinics[stored.ClinicID] = &stored

	out := stored
	return &out, nil
}

// Upsert creates or overwrites the mutable fields of a clinic by id.
func (r *InMemoryRepository) Upsert(ctx context.Context, clinic *Clinic) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	existing, ok := r.clinics[clinic.ClinicID]
	if !ok {
		stored := *clinic
		stored.CreatedAt = now
		stored.UpdatedAt = now
		r.clinics[stored.ClinicID] = &stored
		return true, nil
	}

	existing.Name = clinic.Name
	existing.City = clinic.City
	existing.WhatsApp = clinic.WhatsApp
	existing.Phone = clinic.Phone
	existing.Email = clinic.Email
	existing.Website = clinic.Website
	existing.Address = clinic.Address
	existing.Hours = clinic.Hours
	existing.Notes = clinic.Notes
	existing.UpdatedAt = now
	return false, nil
}

// GetByID retrieves a clinic by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, clinicID string) (*Clinic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clinic, ok := r.clinics[clinicID]
	if !ok {
		return nil, ErrClinicNotFound
	}

	out := *clinic
	return &out, nil
}

// List returns all clinics ordered by name.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Clinic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Clinic, 0, len(r.clinics))
	for _, c := range r.clinics {
		clinic := *c
		out = append(out, &clinic)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
