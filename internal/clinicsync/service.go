package clinicsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rafaleads/rafaleads/internal/clinics"
	"github.com/rafaleads/rafaleads/internal/observability/metrics"
	"github.com/rafaleads/rafaleads/internal/webhooklog"
	"github.com/rafaleads/rafaleads/pkg/logging"
)

const (
	auditSource         = "clinic_sync"
	eventSyncCompleted  = "sync_completed"
	eventSyncFailed     = "sync_failed"
	defaultSyncInterval = 5 * time.Minute
)

// ErrSyncInProgress is returned when a sync pass is requested while another
// pass is still running.
var ErrSyncInProgress = errors.New("clinicsync: sync already in progress")

// Source provides the upstream clinic list.
type Source interface {
	FetchClinics(ctx context.Context) ([]FeedClinic, error)
}

// Result summarizes one reconciliation pass. Success is false only when the
// feed fetch itself fails; individual item errors are listed in Errors.
type Result struct {
	Success  bool      `json:"success"`
	Total    int       `json:"total"`
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	Skipped  int       `json:"skipped"`
	Errors   []string  `json:"errors,omitempty"`
	SyncedAt time.Time `json:"synced_at"`
}

// Status is a snapshot of the reconciler for the admin surface.
type Status struct {
	Enabled    bool    `json:"enabled"`
	InProgress bool    `json:"in_progress"`
	Interval   string  `json:"sync_interval"`
	FeedURL    string  `json:"feed_url"`
	LastResult *Result `json:"last_result,omitempty"`
}

// Service periodically upserts feed clinics into the local registry. A pass
// that fails leaves the registry untouched and never takes down the host
// process.
type Service struct {
	source   Source
	repo     clinics.Repository
	audit    webhooklog.Store
	metrics  *metrics.Metrics
	logger   *logging.Logger
	interval time.Duration
	feedURL  string
	now      func() time.Time

	tick <-chan time.Time
	stop func()

	runMu sync.Mutex

	mu      sync.RWMutex
	running bool
	last    *Result
}

// ServiceConfig configures the reconciler. Tick/Stop override the internal
// ticker so tests can drive passes manually.
type ServiceConfig struct {
	Source   Source
	Repo     clinics.Repository
	Audit    webhooklog.Store
	Metrics  *metrics.Metrics
	Logger   *logging.Logger
	Interval time.Duration
	FeedURL  string
	Now      func() time.Time

	Tick <-chan time.Time
	Stop func()
}

// NewService creates the clinic sync reconciler.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("clinicsync: source required")
	}
	if cfg.Repo == nil {
		return nil, errors.New("clinicsync: clinic repository required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	tick := cfg.Tick
	stop := cfg.Stop
	if tick == nil {
		ticker := time.NewTicker(interval)
		tick = ticker.C
		stop = ticker.Stop
	}

	return &Service{
		source:   cfg.Source,
		repo:     cfg.Repo,
		audit:    cfg.Audit,
		metrics:  cfg.Metrics,
		logger:   logger,
		interval: interval,
		feedURL:  cfg.FeedURL,
		now:      now,
		tick:     tick,
		stop:     stop,
	}, nil
}

// Start runs an initial pass and then one pass per tick until ctx is
// canceled. Pass failures are logged, never propagated.
func (s *Service) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if s.stop != nil {
			s.stop()
		}
	}()

	s.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.tick:
			s.runPass(ctx)
		}
	}
}

func (s *Service) runPass(ctx context.Context) {
	if _, err := s.SyncOnce(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
		s.logger.Error("clinic sync pass failed", "error", err)
	}
}

// SyncOnce performs a single reconciliation pass. Overlapping calls are
// rejected with ErrSyncInProgress.
func (s *Service) SyncOnce(ctx context.Context) (*Result, error) {
	if !s.runMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.runMu.Unlock()

	s.setRunning(true)
	defer s.setRunning(false)

	result := s.reconcile(ctx)

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	// Only a fetch-level failure fails the pass; item errors are carried in
	// the result counts.
	if !result.Success {
		return result, fmt.Errorf("clinicsync: pass failed: %s", result.Errors[0])
	}
	return result, nil
}

func (s *Service) reconcile(ctx context.Context) *Result {
	result := &Result{SyncedAt: s.now().UTC()}

	feed, err := s.source.FetchClinics(ctx)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		s.metrics.ObserveSyncPass("failure")
		s.appendAudit(ctx, eventSyncFailed, result, err.Error())
		return result
	}

	result.Total = len(feed)
	for _, item := range feed {
		if item.ClinicID == "" || item.Name == "" {
			result.Skipped++
			s.metrics.ObserveSyncClinic("skipped")
			continue
		}

		created, err := s.repo.Upsert(ctx, feedToClinic(item))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", item.ClinicID, err))
			s.metrics.ObserveSyncClinic("failed")
			continue
		}
		if created {
			result.Created++
			s.metrics.ObserveSyncClinic("created")
		} else {
			result.Updated++
			s.metrics.ObserveSyncClinic("updated")
		}
	}

	// Item failures are independent: the pass still completes and its
	// aggregate row carries the error count alongside the successes.
	result.Success = true
	s.metrics.ObserveSyncPass("success")
	s.appendAudit(ctx, eventSyncCompleted, result, "")
	s.logger.Info("clinic sync completed",
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result
}

// feedToClinic maps a feed row onto the local model, applying the documented
// fallbacks: whatsapp falls back to phone, city to "Unknown".
func feedToClinic(item FeedClinic) *clinics.Clinic {
	whatsapp := item.WhatsApp
	if whatsapp == "" {
		whatsapp = item.Phone
	}
	city := item.City
	if city == "" {
		city = "Unknown"
	}
	return &clinics.Clinic{
		ClinicID: item.ClinicID,
		Name:     item.Name,
		City:     city,
		WhatsApp: whatsapp,
		Phone:    item.Phone,
		Email:    item.Email,
		Website:  item.Website,
		Address:  item.Address,
		Hours:    item.Hours,
		Notes:    item.Notes,
	}
}

func (s *Service) appendAudit(ctx context.Context, event string, result *Result, errMsg string) {
	if s.audit == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		data = []byte("{}")
	}
	status := webhooklog.StatusSuccess
	if errMsg != "" {
		status = webhooklog.StatusError
	}
	if err := s.audit.Append(ctx, webhooklog.Entry{
		Source: auditSource,
		Event:  event,
		Data:   string(data),
		Status: status,
		Error:  errMsg,
	}); err != nil {
		s.logger.Error("clinic sync audit write failed", "error", err)
	}
}

// Status reports whether a pass is running and the outcome of the last pass.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Enabled:    true,
		InProgress: s.running,
		Interval:   s.interval.String(),
		FeedURL:    s.feedURL,
		LastResult: s.last,
	}
}

func (s *Service) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}
