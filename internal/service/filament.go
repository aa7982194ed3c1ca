package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"filament-inventory-api/internal/cache"
	"filament-inventory-api/internal/logger"
	"filament-inventory-api/internal/model"
	"filament-inventory-api/internal/normalize"
	"filament-inventory-api/internal/repository"
	"filament-inventory-api/pkg/apierror"

	"golang.org/x/exp/slog"
)

// listCacheKey holds the encoded list response.
const listCacheKey = "filaments:list"

// fieldOrder fixes the order of validation details.
var fieldOrder = []string{
	normalize.FieldBrand,
	normalize.FieldColor,
	normalize.FieldType,
	normalize.FieldMaterial,
	normalize.FieldAmount,
}

// FilamentServiceConfig holds the optional collaborators of FilamentService.
type FilamentServiceConfig struct {
	Cache        cache.Cache // nil disables list caching
	CacheTTL     time.Duration
	Canonicalize bool // store normalize.Draft output instead of trimmed input
	Logger       *slog.Logger
	Clock        func() time.Time
}

// FilamentService handles filament business logic: validation, timestamps,
// not-found translation and list caching.
type FilamentService struct {
	repo         repository.FilamentRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	canonicalize bool
	log          *slog.Logger
	now          func() time.Time

	// listGen is bumped by every successful write. A list read that saw a
	// different value must not leave its result in the cache.
	listGen atomic.Uint64
}

// NewFilamentService creates a new filament service.
// Returns nil if repo is nil (required dependency).
func NewFilamentService(repo repository.FilamentRepository, cfg FilamentServiceConfig) *FilamentService {
	if repo == nil {
		return nil
	}

	s := &FilamentService{
		repo:         repo,
		cache:        cfg.Cache,
		cacheTTL:     cfg.CacheTTL,
		canonicalize: cfg.Canonicalize,
		log:          cfg.Logger,
		now:          cfg.Clock,
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = 5 * time.Minute
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With(slog.String("component", "filament_service"))
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// List returns every filament ordered by brand, then color.
func (s *FilamentService) List(ctx context.Context) ([]model.Filament, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, listCacheKey); err == nil {
			var filaments []model.Filament
			if err := json.Unmarshal(data, &filaments); err == nil {
				return filaments, nil
			}
			s.log.Warn("discarding undecodable cached list")
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("list cache read failed", logger.Err(err))
		}
	}

	gen := s.listGen.Load()
	filaments, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("list failed", logger.Err(err))
		return nil, apierror.InternalError("Failed to load inventory")
	}

	s.storeList(ctx, gen, filaments)
	return filaments, nil
}

// storeList caches filaments read at generation gen, unless a write has
// committed since.
func (s *FilamentService) storeList(ctx context.Context, gen uint64, filaments []model.Filament) {
	if s.cache == nil || s.listGen.Load() != gen {
		return
	}
	data, err := json.Marshal(filaments)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, listCacheKey, data, s.cacheTTL); err != nil {
		s.log.Warn("list cache write failed", logger.Err(err))
		return
	}
	// A write that invalidated between the check and Set.
	if s.listGen.Load() != gen {
		s.log.Debug("dropping list cached across a write")
		s.invalidate(ctx)
	}
}

// Create validates d and stores it with both timestamps set to now.
func (s *FilamentService) Create(ctx context.Context, d model.Draft) (*model.Filament, error) {
	d, err := s.prepare(d)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.Create(ctx, d, s.now())
	if err != nil {
		s.log.Error("create failed", logger.Err(err))
		return nil, apierror.InternalError("Failed to create filament")
	}

	s.invalidate(ctx)
	s.log.Info("filament created", slog.Int64("id", f.ID))
	return f, nil
}

// Update validates d and overwrites the editable fields of id.
func (s *FilamentService) Update(ctx context.Context, id int64, d model.Draft) (*model.Filament, error) {
	d, err := s.prepare(d)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.Update(ctx, id, d, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("Not found")
		}
		s.log.Error("update failed", slog.Int64("id", id), logger.Err(err))
		return nil, apierror.InternalError("Failed to update filament")
	}

	s.invalidate(ctx)
	s.log.Info("filament updated", slog.Int64("id", id))
	return f, nil
}

// Delete hard-deletes id.
func (s *FilamentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.NotFound("Not found")
		}
		s.log.Error("delete failed", slog.Int64("id", id), logger.Err(err))
		return apierror.InternalError("Failed to delete filament")
	}

	s.invalidate(ctx)
	s.log.Info("filament deleted", slog.Int64("id", id))
	return nil
}

// Stats returns store statistics.
func (s *FilamentService) Stats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.GetStats(ctx)
}

// Ping reports whether the store is reachable.
func (s *FilamentService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// prepare rejects invalid drafts before anything touches the store and
// returns the form that will be persisted.
func (s *FilamentService) prepare(d model.Draft) (model.Draft, error) {
	if errs := normalize.ValidateDraft(d); len(errs) > 0 {
		details := make([]apierror.FieldError, 0, len(errs))
		for _, field := range fieldOrder {
			if msg, ok := errs[field]; ok {
				details = append(details, apierror.FieldError{Field: field, Message: msg})
			}
		}
		return d, apierror.ValidationError("Invalid filament data", details...)
	}

	if s.canonicalize {
		return normalize.Draft(d), nil
	}

	d.Brand = strings.TrimSpace(d.Brand)
	d.Color = strings.TrimSpace(d.Color)
	d.Type = strings.TrimSpace(d.Type)
	d.Material = strings.TrimSpace(d.Material)
	return d, nil
}

func (s *FilamentService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.listGen.Add(1)
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		s.log.Warn("list cache invalidation failed", logger.Err(err))
	}
}
