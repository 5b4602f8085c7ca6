package records

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps records in process memory. It backs offline runs
// without a database and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	byFP  map[string]*models.Record
	items []*models.Record
	now   func() time.Time
}

// NewMemoryRepository returns an empty repository that stamps records with
// the wall clock.
func NewMemoryRepository() *MemoryRepository {
	return NewMemoryRepositoryWithClock(time.Now)
}

// NewMemoryRepositoryWithClock is NewMemoryRepository with an injectable clock.
func NewMemoryRepositoryWithClock(now func() time.Time) *MemoryRepository {
	return &MemoryRepository{
		byFP: make(map[string]*models.Record),
		now:  now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, rec *models.Record) (*models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byFP[rec.Fingerprint]; ok {
		return nil, fmt.Errorf("%w: fingerprint %s", common.ErrDuplicateRecord, rec.Fingerprint)
	}

	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now().UTC()
	}

	r.byFP[stored.Fingerprint] = &stored
	r.items = append(r.items, &stored)

	out := stored
	return &out, nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]*models.Record, error) {
	r.mu.RLock()
	out := make([]*models.Record, 0, len(r.items))
	for _, it := range r.items {
		cp := *it
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
