package vouchers

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freestay/backend/internal/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) { c.Set(c.Now().Add(d)) }

func newTestService(t *testing.T, usageLimit int) (*Service, *MemoryStore, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	svc := NewService(store, Config{UsageLimit: usageLimit, Now: clock.Now}, nil)
	return svc, store, clock
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var codePattern = regexp.MustCompile(`^VCH[0-9A-F]{8}$`)

func TestGenerateCodeFormat(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code := GenerateCode()
		require.Regexp(t, codePattern, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190, "codes should not repeat from a shared counter")
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "VCHABCD1234", NormalizeCode("  vchAbcd1234 "))
}

func TestPurchaseCreatesActiveVoucherValidForOneYear(t *testing.T) {
	svc, store, clock := newTestService(t, 1)
	user := uuid.New()

	v, err := svc.Purchase(context.Background(), dec("49.90"), user)
	require.NoError(t, err)

	assert.Regexp(t, codePattern, v.Code)
	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.Equal(t, user, v.PurchasedByUser)
	assert.True(t, v.Price.Equal(dec("49.90")))
	assert.Equal(t, models.VoucherActive, v.Status)
	assert.Equal(t, 0, v.CurrentUses)
	assert.Equal(t, 1, v.UsageLimit)
	assert.Equal(t, clock.Now(), v.ValidityStart)
	assert.Equal(t, 365*24*time.Hour, v.ValidityEnd.Sub(v.ValidityStart))

	stored, ok := store.Get(v.Code)
	require.True(t, ok)
	assert.Equal(t, v.ID, stored.ID)
}

func TestPurchaseAcceptsAmountAsGiven(t *testing.T) {
	svc, _, _ := newTestService(t, 1)

	v, err := svc.Purchase(context.Background(), dec("0"), uuid.New())
	require.NoError(t, err)
	assert.True(t, v.Price.IsZero())
}

func TestPurchaseCodeCollisionIsAnError(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(clock.Now)
	svc := NewService(store, Config{Now: clock.Now, NewCode: func() string { return "VCH00000000" }}, nil)

	_, err := svc.Purchase(context.Background(), dec("10"), uuid.New())
	require.NoError(t, err)

	_, err = svc.Purchase(context.Background(), dec("10"), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestListNewestFirst(t *testing.T) {
	svc, _, clock := newTestService(t, 1)
	ctx := context.Background()
	user := uuid.New()

	empty, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first, err := svc.Purchase(ctx, dec("10"), user)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := svc.Purchase(ctx, dec("20"), user)
	require.NoError(t, err)
	_, err = svc.Purchase(ctx, dec("30"), uuid.New())
	require.NoError(t, err)

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestValidateIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t, 1)
	ctx := context.Background()
	v, err := svc.Purchase(ctx, dec("25"), uuid.New())
	require.NoError(t, err)

	want := ValidateResult{Valid: true, Voucher: &models.VoucherSummary{ID: v.ID, Code: v.Code, Price: v.Price}}
	for i := 0; i < 3; i++ {
		got, err := svc.Validate(ctx, v.Code)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	stored, _ := store.Get(v.Code)
	assert.Equal(t, 0, stored.CurrentUses)
	assert.Equal(t, models.VoucherActive, stored.Status)
}

func TestValidateIgnoresCase(t *testing.T) {
	svc, _, _ := newTestService(t, 1)
	v, err := svc.Purchase(context.Background(), dec("25"), uuid.New())
	require.NoError(t, err)

	got, err := svc.Validate(context.Background(), " "+strings.ToLower(v.Code))
	require.NoError(t, err)
	assert.True(t, got.Valid)
}

func TestValidateRejectsWithoutDetail(t *testing.T) {
	svc, _, clock := newTestService(t, 1)
	ctx := context.Background()
	v, err := svc.Purchase(ctx, dec("25"), uuid.New())
	require.NoError(t, err)
	rejected := ValidateResult{Valid: false, Error: MsgInvalidOrExpired}

	unknown, err := svc.Validate(ctx, "VCHFFFFFFFF")
	require.NoError(t, err)
	assert.Equal(t, rejected, unknown)

	clock.Set(v.ValidityStart.Add(-time.Second))
	early, err := svc.Validate(ctx, v.Code)
	require.NoError(t, err)
	assert.Equal(t, rejected, early)

	clock.Set(v.ValidityEnd)
	onEdge, err := svc.Validate(ctx, v.Code)
	require.NoError(t, err)
	assert.True(t, onEdge.Valid, "the window is inclusive")

	clock.Set(v.ValidityEnd.Add(time.Second))
	expired, err := svc.Validate(ctx, v.Code)
	require.NoError(t, err)
	assert.Equal(t, rejected, expired)
}

func TestApplyComputesDiscount(t *testing.T) {
	cases := []struct {
		total, final, removed string
	}{
		{"200", "170", "30"},
		{"99.99", "84.9915", "14.9985"},
		{"0", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.total, func(t *testing.T) {
			svc, _, _ := newTestService(t, 1)
			ctx := context.Background()
			user := uuid.New()
			v, err := svc.Purchase(ctx, dec("50"), user)
			require.NoError(t, err)

			res, err := svc.Apply(ctx, v.Code, dec(tc.total), user)
			require.NoError(t, err)
			require.True(t, res.Success)
			assert.True(t, res.VoucherApplied)
			assert.True(t, res.OriginalPrice.Equal(dec(tc.total)))
			assert.True(t, res.FinalPrice.Equal(dec(tc.final)), "final %s", res.FinalPrice)
			assert.True(t, res.CommissionRemoved.Equal(dec(tc.removed)), "removed %s", res.CommissionRemoved)
		})
	}
}

func TestApplyUsesConfiguredRate(t *testing.T) {
	clock := newFakeClock()
	svc := NewService(NewMemoryStore(clock.Now), Config{Now: clock.Now, CommissionRate: dec("0.2")}, nil)

	_, final, removed := svc.Discount(dec("200"))
	assert.True(t, final.Equal(dec("160")))
	assert.True(t, removed.Equal(dec("40")))
}

func TestApplySingleUseVoucher(t *testing.T) {
	svc, store, _ := newTestService(t, 1)
	ctx := context.Background()
	user := uuid.New()
	v, err := svc.Purchase(ctx, dec("50"), user)
	require.NoError(t, err)

	first, err := svc.Apply(ctx, v.Code, dec("200"), user)
	require.NoError(t, err)
	assert.True(t, first.Success)

	stored, _ := store.Get(v.Code)
	assert.Equal(t, models.VoucherUsed, stored.Status)
	assert.Equal(t, 1, stored.CurrentUses)

	second, err := svc.Apply(ctx, v.Code, dec("200"), user)
	require.NoError(t, err)
	assert.Equal(t, ApplyResult{Success: false, Error: MsgInvalidOrUnauthorized}, second)

	validated, err := svc.Validate(ctx, v.Code)
	require.NoError(t, err)
	assert.False(t, validated.Valid)

	stored, _ = store.Get(v.Code)
	assert.Equal(t, 1, stored.CurrentUses)
}

func TestApplyMultiUseVoucher(t *testing.T) {
	svc, store, _ := newTestService(t, 3)
	ctx := context.Background()
	user := uuid.New()
	v, err := svc.Purchase(ctx, dec("50"), user)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		res, err := svc.Apply(ctx, strings.ToLower(v.Code), dec("100"), user)
		require.NoError(t, err)
		require.True(t, res.Success, "use %d", i)

		stored, _ := store.Get(v.Code)
		assert.Equal(t, i, stored.CurrentUses)
		if i < 3 {
			assert.Equal(t, models.VoucherActive, stored.Status)
		} else {
			assert.Equal(t, models.VoucherUsed, stored.Status)
		}
	}

	res, err := svc.Apply(ctx, v.Code, dec("100"), user)
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestApplyRejectsOtherUser(t *testing.T) {
	svc, store, _ := newTestService(t, 1)
	ctx := context.Background()
	v, err := svc.Purchase(ctx, dec("50"), uuid.New())
	require.NoError(t, err)

	res, err := svc.Apply(ctx, v.Code, dec("200"), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, ApplyResult{Success: false, Error: MsgInvalidOrUnauthorized}, res)

	stored, _ := store.Get(v.Code)
	assert.Equal(t, 0, stored.CurrentUses)
	assert.Equal(t, models.VoucherActive, stored.Status)
}

func TestApplyRejectsOutsideWindow(t *testing.T) {
	svc, store, clock := newTestService(t, 1)
	ctx := context.Background()
	user := uuid.New()
	v, err := svc.Purchase(ctx, dec("50"), user)
	require.NoError(t, err)
	rejected := ApplyResult{Success: false, Error: MsgInvalidOrUnauthorized}

	unknown, err := svc.Apply(ctx, "VCHFFFFFFFF", dec("200"), user)
	require.NoError(t, err)
	assert.Equal(t, rejected, unknown)

	clock.Set(v.ValidityStart.Add(-time.Second))
	early, err := svc.Apply(ctx, v.Code, dec("200"), user)
	require.NoError(t, err)
	assert.Equal(t, rejected, early)

	clock.Set(v.ValidityEnd.Add(time.Second))
	late, err := svc.Apply(ctx, v.Code, dec("200"), user)
	require.NoError(t, err)
	assert.Equal(t, rejected, late)

	stored, _ := store.Get(v.Code)
	assert.Equal(t, 0, stored.CurrentUses)
	assert.Equal(t, models.VoucherActive, stored.Status, "expiry is derived, not stored")
}

func TestConcurrentApplyRedeemsOnce(t *testing.T) {
	svc, store, _ := newTestService(t, 1)
	ctx := context.Background()
	user := uuid.New()
	v, err := svc.Purchase(ctx, dec("50"), user)
	require.NoError(t, err)

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		start     = make(chan struct{})
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := svc.Apply(ctx, v.Code, dec("200"), user)
			if err != nil {
				t.Error(err)
				return
			}
			if res.Success {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	stored, _ := store.Get(v.Code)
	assert.Equal(t, 1, stored.CurrentUses)
	assert.Equal(t, models.VoucherUsed, stored.Status)
}

type failingStore struct{ err error }

func (f failingStore) Create(context.Context, *models.Voucher) error { return f.err }
func (f failingStore) ListByUser(context.Context, uuid.UUID) ([]models.Voucher, error) {
	return nil, f.err
}
func (f failingStore) FindRedeemable(context.Context, string) (*models.Voucher, error) {
	return nil, f.err
}
func (f failingStore) Redeem(context.Context, string, uuid.UUID) (*models.Voucher, error) {
	return nil, f.err
}

func TestStoreFailuresAreNotRejections(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(failingStore{err: boom}, Config{}, nil)
	ctx := context.Background()

	_, err := svc.Purchase(ctx, dec("10"), uuid.New())
	assert.ErrorIs(t, err, boom)

	_, err = svc.List(ctx, uuid.New())
	assert.ErrorIs(t, err, boom)

	_, err = svc.Validate(ctx, "VCH12345678")
	assert.ErrorIs(t, err, boom)

	_, err = svc.Apply(ctx, "VCH12345678", dec("10"), uuid.New())
	assert.ErrorIs(t, err, boom)
}
