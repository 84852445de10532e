package leads

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *IngestLeadRequest) (*Lead, error)
	List(ctx context.Context, clinicID string, filter ListFilter) ([]*Lead, int64, error)
	UpdateNotes(ctx context.Context, clinicID, sessionID, notes string) (*Lead, error)
	Stats(ctx context.Context, clinicID string, now time.Time) (*Stats, error)
}

// InMemoryRepository is a Repository backed by a map, used in tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
		now:   time.Now,
	}
}

// SetNow overrides the clock, used to place leads at fixed capture times.
func (r *InMemoryRepository) SetNow(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Create stores a new lead keyed by session id.
func (r *InMemoryRepository) Create(ctx context.Context, req *IngestLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[req.SessionID]; ok {
		return nil, ErrDuplicateSession
	}

	now := r.now().UTC()
	lead := &Lead{
		SessionID:   req.SessionID,
		ClinicID:    req.ClinicID,
		Lang:        req.Lang,
		Name:        req.Name,
		Phone:       req.Phone,
		TreatmentID: req.TreatmentID,
		Message:     req.Message,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.leads[lead.SessionID] = lead

	out := *lead
	return &out, nil
}

// List returns leads for a clinic, newest first, honoring the filter.
func (r *InMemoryRepository) List(ctx context.Context, clinicID string, filter ListFilter) ([]*Lead, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	treatments := map[string]struct{}{}
	for _, t := range filter.Treatments {
		treatments[t] = struct{}{}
	}

	var matched []*Lead
	for _, lead := range r.leads {
		if lead.ClinicID != clinicID {
			continue
		}
		if filter.StartDate != nil && lead.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && lead.CreatedAt.After(*filter.EndDate) {
			continue
		}
		if len(treatments) > 0 {
			if _, ok := treatments[lead.TreatmentID]; !ok {
				continue
			}
		}
		copied := *lead
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].SessionID > matched[j].SessionID
	})

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

// UpdateNotes replaces the operator notes on a lead scoped to the clinic.
func (r *InMemoryRepository) UpdateNotes(ctx context.Context, clinicID, sessionID, notes string) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[sessionID]
	if !ok || lead.ClinicID != clinicID {
		return nil, ErrLeadNotFound
	}

	lead.Notes = notes
	lead.UpdatedAt = r.now().UTC()

	out := *lead
	return &out, nil
}

// Stats counts leads all-time, since local midnight, and since seven days
// before local midnight, relative to now.
func (r *InMemoryRepository) Stats(ctx context.Context, clinicID string, now time.Time) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := today.AddDate(0, 0, -7)

	stats := &Stats{}
	for _, lead := range r.leads {
		if lead.ClinicID != clinicID {
			continue
		}
		stats.TotalLeads++
		if !lead.CreatedAt.Before(today) {
			stats.TodayLeads++
		}
		if !lead.CreatedAt.Before(weekAgo) {
			stats.WeeklyLeads++
		}
	}
	return stats, nil
}
