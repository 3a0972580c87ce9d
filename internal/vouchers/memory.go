package vouchers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freestay/backend/internal/models"
)

// MemoryStore is an in-process Store. The mutex makes Redeem atomic.
type MemoryStore struct {
	mu     sync.Mutex
	now    func() time.Time
	byCode map[string]*models.Voucher
}

// NewMemoryStore creates an empty store. A nil clock means time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now, byCode: make(map[string]*models.Voucher)}
}

// Create inserts v, assigning its ID and timestamps.
func (m *MemoryStore) Create(_ context.Context, v *models.Voucher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byCode[v.Code]; ok {
		return ErrDuplicateCode
	}
	ts := m.now().UTC()
	v.ID = uuid.New()
	v.CreatedAt = ts
	v.UpdatedAt = ts
	stored := *v
	m.byCode[v.Code] = &stored
	return nil
}

// ListByUser returns copies of the user's vouchers, newest first.
func (m *MemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []models.Voucher
	for _, v := range m.byCode {
		if v.PurchasedByUser == userID {
			list = append(list, *v)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// FindRedeemable returns a copy of the active, in-window voucher with code.
func (m *MemoryStore) FindRedeemable(_ context.Context, code string) (*models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byCode[code]
	if !ok || !v.Redeemable(m.now()) {
		return nil, ErrNotFound
	}
	out := *v
	return &out, nil
}

// Redeem consumes one use of the caller's voucher.
func (m *MemoryStore) Redeem(_ context.Context, code string, userID uuid.UUID) (*models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	v, ok := m.byCode[code]
	if !ok || v.PurchasedByUser != userID || !v.Redeemable(now) {
		return nil, ErrNotFound
	}
	v.CurrentUses++
	if v.CurrentUses >= v.UsageLimit {
		v.Status = models.VoucherUsed
	}
	v.UpdatedAt = now.UTC()
	out := *v
	return &out, nil
}

// Get returns a copy of the voucher with code regardless of status or window.
func (m *MemoryStore) Get(code string) (models.Voucher, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byCode[code]
	if !ok {
		return models.Voucher{}, false
	}
	return *v, true
}
