package allocation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/core/tx"
	"telstock/internal/domain/catalogs/accessory"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/domain/inventory"
)

// --- fakes ---

type fakeUserRepo struct {
	users []*hierarchy.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *hierarchy.User) error { return nil }
func (f *fakeUserRepo) Update(ctx context.Context, u *hierarchy.User) error { return nil }

func (f *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*hierarchy.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*hierarchy.User, error) {
	return nil, apperror.NewNotFound("user", email)
}

func (f *fakeUserRepo) List(ctx context.Context, role *hierarchy.Role) ([]*hierarchy.User, error) {
	return f.users, nil
}

type fakeInventoryRepo struct {
	units     map[string]*inventory.IMEI
	updateErr error // injected once to simulate a lost version race
}

func (f *fakeInventoryRepo) Create(ctx context.Context, m *inventory.IMEI) error {
	f.units[m.Number] = m
	return nil
}

func (f *fakeInventoryRepo) CreateBatch(ctx context.Context, items []*inventory.IMEI) (int64, error) {
	for _, m := range items {
		f.units[m.Number] = m
	}
	return int64(len(items)), nil
}

func (f *fakeInventoryRepo) GetByNumber(ctx context.Context, number string) (*inventory.IMEI, error) {
	if m, ok := f.units[number]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, apperror.NewNotFound("IMEI", number)
}

func (f *fakeInventoryRepo) GetByID(ctx context.Context, imeiID id.ID) (*inventory.IMEI, error) {
	for _, m := range f.units {
		if m.ID == imeiID {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("IMEI", imeiID)
}

func (f *fakeInventoryRepo) Update(ctx context.Context, m *inventory.IMEI) error {
	if f.updateErr != nil {
		err := f.updateErr
		f.updateErr = nil
		return err
	}
	current, ok := f.units[m.Number]
	if !ok {
		return apperror.NewNotFound("IMEI", m.Number)
	}
	if current.Version != m.Version {
		return apperror.NewConcurrentModification("imei", m.Number)
	}
	copied := *m
	copied.Version++
	f.units[m.Number] = &copied
	return nil
}

func (f *fakeInventoryRepo) List(ctx context.Context, fl inventory.Filter) ([]*inventory.IMEI, error) {
	return nil, nil
}

func (f *fakeInventoryRepo) Count(ctx context.Context, fl inventory.Filter) (int64, error) {
	return 0, nil
}

func (f *fakeInventoryRepo) ListOwnedBy(ctx context.Context, ownerID id.ID, exclude []inventory.Status) ([]*inventory.IMEI, error) {
	var out []*inventory.IMEI
outer:
	for _, m := range f.units {
		if m.CurrentOwnerID == nil || *m.CurrentOwnerID != ownerID {
			continue
		}
		for _, s := range exclude {
			if m.Status == s {
				continue outer
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeInventoryRepo) ListUnallocated(ctx context.Context) ([]*inventory.IMEI, error) {
	var out []*inventory.IMEI
	for _, m := range f.units {
		if m.CurrentOwnerID == nil &&
			(m.Status == inventory.StatusInStock || m.Status == inventory.StatusAllocated) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeLedger struct {
	entries []*LedgerEntry
}

func (f *fakeLedger) Create(ctx context.Context, e *LedgerEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLedger) ListByImei(ctx context.Context, imei string) ([]*LedgerEntry, error) {
	var out []*LedgerEntry
	for _, e := range f.entries {
		if e.Imei == imei {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) List(ctx context.Context, fl Filter) ([]*LedgerEntry, error) {
	return f.entries, nil
}

func (f *fakeLedger) Count(ctx context.Context, fl Filter) (int64, error) {
	return int64(len(f.entries)), nil
}

type balanceKey struct {
	accessory id.ID
	holder    id.ID // Nil for the pool
}

type fakeBalances struct {
	quantities map[balanceKey]int64
}

func key(accessoryID id.ID, holderID *id.ID) balanceKey {
	k := balanceKey{accessory: accessoryID, holder: id.Nil}
	if holderID != nil {
		k.holder = *holderID
	}
	return k
}

func (f *fakeBalances) GetForUpdate(ctx context.Context, accessoryID id.ID, holderID *id.ID) (int64, error) {
	return f.quantities[key(accessoryID, holderID)], nil
}

func (f *fakeBalances) Adjust(ctx context.Context, accessoryID id.ID, holderID *id.ID, delta int64) error {
	f.quantities[key(accessoryID, holderID)] += delta
	return nil
}

func (f *fakeBalances) ListByHolder(ctx context.Context, holderID *id.ID) ([]*accessory.Balance, error) {
	return nil, nil
}

type fakeRefs struct{ n int }

func (f *fakeRefs) Next(ctx context.Context, prefix string) (string, error) {
	f.n++
	return fmt.Sprintf("%s-2026-%05d", prefix, f.n), nil
}

// --- fixtures ---

type fixture struct {
	engine   *Engine
	inv      *fakeInventoryRepo
	ledger   *fakeLedger
	balances *fakeBalances

	admin, rm, tl, fo *hierarchy.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	admin := &hierarchy.User{ID: id.New(), Name: "Admin", Role: hierarchy.RoleAdmin, IsActive: true}
	rm := &hierarchy.User{ID: id.New(), Name: "RM", Role: hierarchy.RoleRegionalManager, IsActive: true}
	tl := &hierarchy.User{ID: id.New(), Name: "TL", Role: hierarchy.RoleTeamLeader, RegionalManagerID: &rm.ID, IsActive: true}
	fo := &hierarchy.User{ID: id.New(), Name: "FO", Role: hierarchy.RoleFieldOfficer, TeamLeaderID: &tl.ID, IsActive: true}

	inv := &fakeInventoryRepo{units: map[string]*inventory.IMEI{}}
	ledger := &fakeLedger{}
	balances := &fakeBalances{quantities: map[balanceKey]int64{}}
	users := hierarchy.NewService(&fakeUserRepo{users: []*hierarchy.User{admin, rm, tl, fo}}, nil)

	return &fixture{
		engine:   NewEngine(ledger, inv, users, balances, tx.NoopManager{}, &fakeRefs{}, nil),
		inv:      inv,
		ledger:   ledger,
		balances: balances,
		admin:    admin, rm: rm, tl: tl, fo: fo,
	}
}

func (f *fixture) addUnit(imei string, owner *hierarchy.User, status inventory.Status) *inventory.IMEI {
	m := &inventory.IMEI{
		ID:           id.New(),
		Number:       imei,
		ProductID:    id.New(),
		Source:       inventory.SourceDirect,
		Status:       status,
		RegisteredAt: time.Now().UTC(),
	}
	if owner != nil {
		m.CurrentOwnerID = &owner.ID
		m.CurrentOwnerRole = owner.Role
	}
	f.inv.units[imei] = m
	return m
}

// --- allocation ---

func TestAllocate_FromPool(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", nil, inventory.StatusInStock)

	entry, err := f.engine.Allocate(context.Background(), f.admin.ID, "351234567890123", f.rm.ID, "")
	require.NoError(t, err)

	assert.Equal(t, EventAllocation, entry.EventType)
	assert.Equal(t, StatusCompleted, entry.Status)
	assert.Nil(t, entry.FromUserID, "pool draw records no issuing user")
	assert.Equal(t, f.rm.ID, entry.ToUserID)
	assert.Equal(t, hierarchy.RoleRegionalManager, entry.Level)
	assert.Equal(t, "ALC-2026-00001", entry.Reference)

	unit := f.inv.units["351234567890123"]
	assert.Equal(t, inventory.StatusAllocated, unit.Status)
	require.NotNil(t, unit.CurrentOwnerID)
	assert.Equal(t, f.rm.ID, *unit.CurrentOwnerID)
	assert.NotNil(t, unit.AllocatedAt)
}

func TestAllocate_DownTheChain(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.rm, inventory.StatusAllocated)

	entry, err := f.engine.Allocate(context.Background(), f.rm.ID, "351234567890123", f.tl.ID, "weekly issue")
	require.NoError(t, err)

	require.NotNil(t, entry.FromUserID)
	assert.Equal(t, f.rm.ID, *entry.FromUserID)
	assert.Equal(t, f.tl.ID, entry.ToUserID)
	assert.Equal(t, "weekly issue", entry.Notes)

	// reachability: the unit moved into the recipient's stock view
	tlStock, _ := f.inv.ListOwnedBy(context.Background(), f.tl.ID, nil)
	require.Len(t, tlStock, 1)
	rmStock, _ := f.inv.ListOwnedBy(context.Background(), f.rm.ID, nil)
	assert.Empty(t, rmStock)
}

func TestAllocate_SoldIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.rm, inventory.StatusSold)

	_, err := f.engine.Allocate(context.Background(), f.rm.ID, "351234567890123", f.tl.ID, "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeImeiNotAvailable, appErr.Code)
	assert.Empty(t, f.ledger.entries, "rejected transfer must not write the ledger")
}

func TestAllocate_LockedRejected(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.rm, inventory.StatusLocked)

	_, err := f.engine.Allocate(context.Background(), f.rm.ID, "351234567890123", f.tl.ID, "")

	require.Error(t, err)
	assert.Empty(t, f.ledger.entries)
}

func TestAllocate_IneligibleRecipient(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.rm, inventory.StatusAllocated)

	// RM may not allocate straight to a field officer while a linked TL exists
	_, err := f.engine.Allocate(context.Background(), f.rm.ID, "351234567890123", f.fo.ID, "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotEligible, appErr.Code)
}

func TestAllocate_ActorMustHoldUnit(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.tl, inventory.StatusAllocated)

	_, err := f.engine.Allocate(context.Background(), f.rm.ID, "351234567890123", f.tl.ID, "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotStockHolder, appErr.Code)
}

func TestAllocate_LostVersionRace(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", nil, inventory.StatusInStock)
	f.inv.updateErr = apperror.NewConcurrentModification("imei", "351234567890123")

	_, err := f.engine.Allocate(context.Background(), f.admin.ID, "351234567890123", f.rm.ID, "")

	require.True(t, apperror.IsConcurrentModification(err))
	assert.Empty(t, f.ledger.entries, "losing the race must not leave a ledger entry")
}

func TestBulkAllocate_PartialSuccess(t *testing.T) {
	f := newFixture(t)
	f.addUnit("111111111111111", nil, inventory.StatusInStock)
	f.addUnit("222222222222222", nil, inventory.StatusSold)
	f.addUnit("333333333333333", nil, inventory.StatusInStock)

	result, err := f.engine.BulkAllocate(context.Background(), f.admin.ID,
		[]string{"111111111111111", "222222222222222", "333333333333333", "444444444444444"},
		f.rm.ID, "")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"111111111111111", "333333333333333"}, result.Success)
	require.Len(t, result.Failed, 2)
	assert.Len(t, f.ledger.entries, 2, "one entry per successful item only")
}

func TestBulkAllocate_IneligibleRecipientFailsWhole(t *testing.T) {
	f := newFixture(t)
	f.addUnit("111111111111111", nil, inventory.StatusInStock)

	_, err := f.engine.BulkAllocate(context.Background(), f.admin.ID,
		[]string{"111111111111111"}, f.admin.ID, "")

	require.Error(t, err)
	assert.Empty(t, f.ledger.entries)
}

// --- recall ---

func TestRecall_InvertsAllocation(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.rm, inventory.StatusAllocated)
	ctx := context.Background()

	_, err := f.engine.Allocate(ctx, f.rm.ID, "351234567890123", f.tl.ID, "")
	require.NoError(t, err)

	entry, err := f.engine.Recall(ctx, f.rm.ID, "351234567890123", f.tl.ID, "reassignment")
	require.NoError(t, err)

	assert.Equal(t, EventRecall, entry.EventType)
	assert.Equal(t, "reassignment", entry.Notes)
	require.NotNil(t, entry.FromUserID)
	assert.Equal(t, f.tl.ID, *entry.FromUserID)
	assert.Equal(t, f.rm.ID, entry.ToUserID)

	// the unit is back in the recaller's stock view
	rmStock, _ := f.inv.ListOwnedBy(ctx, f.rm.ID, nil)
	require.Len(t, rmStock, 1)
	tlStock, _ := f.inv.ListOwnedBy(ctx, f.tl.ID, nil)
	assert.Empty(t, tlStock)
}

func TestRecall_DefaultReason(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.fo, inventory.StatusAllocated)

	entry, err := f.engine.Recall(context.Background(), f.tl.ID, "351234567890123", f.fo.ID, "")
	require.NoError(t, err)

	assert.Equal(t, DefaultRecallReason, entry.Notes)
}

func TestRecall_EventTypeDiscriminatesEngines(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", nil, inventory.StatusInStock)
	ctx := context.Background()

	_, err := f.engine.Allocate(ctx, f.admin.ID, "351234567890123", f.rm.ID, "")
	require.NoError(t, err)
	_, err = f.engine.Recall(ctx, f.admin.ID, "351234567890123", f.rm.ID, "")
	require.NoError(t, err)

	require.Len(t, f.ledger.entries, 2)
	assert.Equal(t, EventAllocation, f.ledger.entries[0].EventType)
	assert.Equal(t, EventRecall, f.ledger.entries[1].EventType)
}

func TestRecall_NonSubordinateForbidden(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.rm, inventory.StatusAllocated)

	// TL cannot recall from their own RM
	_, err := f.engine.Recall(context.Background(), f.tl.ID, "351234567890123", f.rm.ID, "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	assert.Empty(t, f.ledger.entries)
}

func TestRecall_UnitNotHeldBySource(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.tl, inventory.StatusAllocated)

	// admin recalls from FO, but the unit is with TL
	_, err := f.engine.Recall(context.Background(), f.admin.ID, "351234567890123", f.fo.ID, "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotStockHolder, appErr.Code)
}

func TestRecall_SoldIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.addUnit("351234567890123", f.fo, inventory.StatusSold)

	_, err := f.engine.Recall(context.Background(), f.tl.ID, "351234567890123", f.fo.ID, "")

	require.Error(t, err)
	assert.Empty(t, f.ledger.entries)
}

func TestBulkRecall_OneEntryPerImei(t *testing.T) {
	f := newFixture(t)
	f.addUnit("111111111111111", f.fo, inventory.StatusAllocated)
	f.addUnit("222222222222222", f.fo, inventory.StatusAllocated)
	f.addUnit("333333333333333", f.tl, inventory.StatusAllocated)

	result, err := f.engine.BulkRecall(context.Background(), f.tl.ID, []RecallItem{
		{Imei: "111111111111111", FromUserID: f.fo.ID},
		{Imei: "222222222222222", FromUserID: f.fo.ID},
		{Imei: "333333333333333", FromUserID: f.fo.ID}, // held by TL, not FO
	}, "audit sweep")
	require.NoError(t, err)

	assert.Len(t, result.Success, 2)
	assert.Len(t, result.Failed, 1)
	assert.Len(t, f.ledger.entries, 2)
	for _, e := range f.ledger.entries {
		assert.Equal(t, EventRecall, e.EventType)
		assert.Equal(t, "audit sweep", e.Notes)
	}
}

func TestRecallableStock(t *testing.T) {
	f := newFixture(t)
	f.addUnit("111111111111111", f.fo, inventory.StatusAllocated)
	f.addUnit("222222222222222", f.fo, inventory.StatusSold)   // never recallable
	f.addUnit("333333333333333", f.fo, inventory.StatusLocked) // never recallable
	f.addUnit("555555555555555", f.fo, inventory.StatusLost)   // never recallable
	f.addUnit("444444444444444", f.tl, inventory.StatusAllocated)

	got, err := f.engine.RecallableStock(context.Background(), f.rm.ID)
	require.NoError(t, err)

	require.Len(t, got, 2)
	byUser := map[id.ID][]*inventory.IMEI{}
	for _, hs := range got {
		byUser[hs.User.ID] = hs.Imeis
	}
	require.Len(t, byUser[f.fo.ID], 1)
	assert.Equal(t, "111111111111111", byUser[f.fo.ID][0].Number)
	require.Len(t, byUser[f.tl.ID], 1)
}

func TestRecallableStock_OmitsEmptyHolders(t *testing.T) {
	f := newFixture(t)
	f.addUnit("111111111111111", f.fo, inventory.StatusAllocated)

	got, err := f.engine.RecallableStock(context.Background(), f.rm.ID)
	require.NoError(t, err)

	require.Len(t, got, 1, "team leader holds nothing and must be omitted")
	assert.Equal(t, f.fo.ID, got[0].User.ID)
}

// --- accessories ---

func TestAllocateAccessory(t *testing.T) {
	f := newFixture(t)
	accID := id.New()
	f.balances.quantities[key(accID, nil)] = 50

	entry, err := f.engine.AllocateAccessory(context.Background(), f.admin.ID, accID, f.rm.ID, 20, "")
	require.NoError(t, err)

	assert.Equal(t, int64(20), entry.Quantity)
	require.NotNil(t, entry.AccessoryID)
	assert.Equal(t, accID, *entry.AccessoryID)
	assert.Empty(t, entry.Imei)
	assert.Equal(t, int64(30), f.balances.quantities[key(accID, nil)])
	assert.Equal(t, int64(20), f.balances.quantities[key(accID, &f.rm.ID)])
}

func TestAllocateAccessory_ExceedsStock(t *testing.T) {
	f := newFixture(t)
	accID := id.New()
	f.balances.quantities[key(accID, nil)] = 5

	_, err := f.engine.AllocateAccessory(context.Background(), f.admin.ID, accID, f.rm.ID, 20, "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "Quantity exceeds available stock", appErr.Message)
	assert.Equal(t, int64(5), f.balances.quantities[key(accID, nil)], "balances untouched")
}

func TestAllocateAccessory_AdminReissuesRecalledQuantity(t *testing.T) {
	f := newFixture(t)
	accID := id.New()
	f.balances.quantities[key(accID, nil)] = 5
	ctx := context.Background()

	_, err := f.engine.AllocateAccessory(ctx, f.admin.ID, accID, f.rm.ID, 5, "")
	require.NoError(t, err)
	_, err = f.engine.RecallAccessory(ctx, f.admin.ID, accID, f.rm.ID, 5, "")
	require.NoError(t, err)

	// the recalled quantity sits on the admin's balance, not the pool
	assert.Equal(t, int64(5), f.balances.quantities[key(accID, &f.admin.ID)])
	assert.Equal(t, int64(0), f.balances.quantities[key(accID, nil)])

	// recall inverts allocation: the quantity must be issuable again
	entry, err := f.engine.AllocateAccessory(ctx, f.admin.ID, accID, f.rm.ID, 5, "")
	require.NoError(t, err)

	require.NotNil(t, entry.FromUserID)
	assert.Equal(t, f.admin.ID, *entry.FromUserID)
	assert.Equal(t, int64(0), f.balances.quantities[key(accID, &f.admin.ID)])
	assert.Equal(t, int64(5), f.balances.quantities[key(accID, &f.rm.ID)])
}

func TestAllocateAccessory_AdminFallsBackToPool(t *testing.T) {
	f := newFixture(t)
	accID := id.New()
	f.balances.quantities[key(accID, &f.admin.ID)] = 2
	f.balances.quantities[key(accID, nil)] = 50

	entry, err := f.engine.AllocateAccessory(context.Background(), f.admin.ID, accID, f.rm.ID, 20, "")
	require.NoError(t, err)

	assert.Nil(t, entry.FromUserID, "pool draw records no issuing user")
	assert.Equal(t, int64(2), f.balances.quantities[key(accID, &f.admin.ID)], "held balance untouched")
	assert.Equal(t, int64(30), f.balances.quantities[key(accID, nil)])
	assert.Equal(t, int64(20), f.balances.quantities[key(accID, &f.rm.ID)])
}

func TestRecallAccessory(t *testing.T) {
	f := newFixture(t)
	accID := id.New()
	f.balances.quantities[key(accID, &f.fo.ID)] = 10

	entry, err := f.engine.RecallAccessory(context.Background(), f.tl.ID, accID, f.fo.ID, 4, "")
	require.NoError(t, err)

	assert.Equal(t, EventRecall, entry.EventType)
	assert.Equal(t, DefaultRecallReason, entry.Notes)
	assert.Equal(t, int64(6), f.balances.quantities[key(accID, &f.fo.ID)])
	assert.Equal(t, int64(4), f.balances.quantities[key(accID, &f.tl.ID)])
}
