package sales

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
	"telstock/internal/core/types"
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
	units map[string]*inventory.IMEI
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

type fakeRefs struct{ n int }

func (f *fakeRefs) Next(ctx context.Context, prefix string) (string, error) {
	f.n++
	return fmt.Sprintf("%s-2026-%05d", prefix, f.n), nil
}

type fakeSaleRepo struct {
	sales []*Sale
}

func (f *fakeSaleRepo) Create(ctx context.Context, s *Sale) error {
	f.sales = append(f.sales, s)
	return nil
}

func (f *fakeSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	for _, s := range f.sales {
		if s.ID == saleID {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("sale", saleID)
}

func (f *fakeSaleRepo) List(ctx context.Context, fl Filter) ([]*Sale, error) { return f.sales, nil }
func (f *fakeSaleRepo) Count(ctx context.Context, fl Filter) (int64, error) {
	return int64(len(f.sales)), nil
}

func (f *fakeSaleRepo) ListByBeneficiary(ctx context.Context, userID id.ID, from, to time.Time) ([]*Sale, error) {
	return f.sales, nil
}

// --- fixtures ---

func testHierarchy() (rm, tl, fo *hierarchy.User) {
	rm = &hierarchy.User{ID: id.New(), Name: "RM", Role: hierarchy.RoleRegionalManager, IsActive: true}
	tl = &hierarchy.User{ID: id.New(), Name: "TL", Role: hierarchy.RoleTeamLeader, RegionalManagerID: &rm.ID, IsActive: true}
	fo = &hierarchy.User{ID: id.New(), Name: "FO", Role: hierarchy.RoleFieldOfficer, TeamLeaderID: &tl.ID, IsActive: true}
	return
}

func newTestService(users []*hierarchy.User, units ...*inventory.IMEI) (*Service, *fakeInventoryRepo, *fakeSaleRepo) {
	inv := &fakeInventoryRepo{units: map[string]*inventory.IMEI{}}
	for _, u := range units {
		inv.units[u.Number] = u
	}
	saleRepo := &fakeSaleRepo{}
	hsvc := hierarchy.NewService(&fakeUserRepo{users: users}, nil)
	svc := NewService(saleRepo, inv, hsvc, tx.NoopManager{}, &fakeRefs{}, nil)
	return svc, inv, saleRepo
}

func heldUnit(imei string, owner *hierarchy.User) *inventory.IMEI {
	return &inventory.IMEI{
		ID:               id.New(),
		Number:           imei,
		ProductID:        id.New(),
		SellingPrice:     2500000,
		CommissionFO:     types.NewMoney(500),
		CommissionTL:     types.NewMoney(200),
		CommissionRM:     types.NewMoney(100),
		Source:           inventory.SourceDistributor,
		Status:           inventory.StatusAllocated,
		CurrentOwnerID:   &owner.ID,
		CurrentOwnerRole: owner.Role,
		RegisteredAt:     time.Now().UTC(),
	}
}

// --- tests ---

func TestSell_HappyPath(t *testing.T) {
	rm, tl, fo := testHierarchy()
	unit := heldUnit("351234567890123", fo)
	svc, inv, saleRepo := newTestService([]*hierarchy.User{rm, tl, fo}, unit)

	sale, err := svc.Sell(context.Background(), fo.ID, unit.Number, "Customer", "0712345678")
	require.NoError(t, err)

	assert.Equal(t, "SAL-2026-00001", sale.Reference)
	assert.Equal(t, fo.ID, sale.SoldByID)
	require.NotNil(t, sale.TeamLeaderID)
	assert.Equal(t, tl.ID, *sale.TeamLeaderID)
	require.NotNil(t, sale.RegionalManagerID)
	assert.Equal(t, rm.ID, *sale.RegionalManagerID)
	assert.True(t, sale.CommissionFO.Equal(types.NewMoney(500)))

	stored := inv.units[unit.Number]
	assert.Equal(t, inventory.StatusSold, stored.Status)
	require.NotNil(t, stored.SoldBy)
	assert.Equal(t, fo.ID, *stored.SoldBy)
	assert.Len(t, saleRepo.sales, 1)
}

func TestSell_NotHolderRejected(t *testing.T) {
	rm, tl, fo := testHierarchy()
	unit := heldUnit("351234567890123", tl)
	svc, inv, _ := newTestService([]*hierarchy.User{rm, tl, fo}, unit)

	_, err := svc.Sell(context.Background(), fo.ID, unit.Number, "", "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotStockHolder, appErr.Code)
	assert.Equal(t, "This IMEI is not allocated to you", appErr.Message)
	assert.Equal(t, inventory.StatusAllocated, inv.units[unit.Number].Status, "no state mutated on rejection")
}

func TestSell_SoldIsTerminal(t *testing.T) {
	rm, tl, fo := testHierarchy()
	unit := heldUnit("351234567890123", fo)
	unit.Status = inventory.StatusSold
	svc, _, saleRepo := newTestService([]*hierarchy.User{rm, tl, fo}, unit)

	_, err := svc.Sell(context.Background(), fo.ID, unit.Number, "", "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeImeiSold, appErr.Code)
	assert.Empty(t, saleRepo.sales, "no sale record for a rejected sale")
}

func TestSell_LockedRejected(t *testing.T) {
	rm, tl, fo := testHierarchy()
	unit := heldUnit("351234567890123", fo)
	unit.Status = inventory.StatusLocked
	svc, _, _ := newTestService([]*hierarchy.User{rm, tl, fo}, unit)

	_, err := svc.Sell(context.Background(), fo.ID, unit.Number, "", "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeImeiNotAvailable, appErr.Code)
}

func TestSummarize(t *testing.T) {
	foID, tlID, rmID := id.New(), id.New(), id.New()

	sale := func(fo id.ID, tl, rm *id.ID) *Sale {
		return &Sale{
			SoldByID:          fo,
			TeamLeaderID:      tl,
			RegionalManagerID: rm,
			CommissionFO:      types.NewMoney(500),
			CommissionTL:      types.NewMoney(200.50),
			CommissionRM:      types.NewMoney(100.25),
		}
	}

	items := []*Sale{
		sale(foID, &tlID, &rmID),
		sale(foID, &tlID, &rmID),
		sale(id.New(), &tlID, &rmID), // someone else's sale, TL/RM still earn
	}

	t.Run("field officer earns only the FO slot", func(t *testing.T) {
		got := Summarize(foID, items)
		assert.Equal(t, 2, got.SalesCount)
		assert.True(t, got.AsFieldOfficer.Equal(types.NewMoney(1000)))
		assert.True(t, got.AsTeamLeader.IsZero())
		assert.True(t, got.Total.Equal(types.NewMoney(1000)))
	})

	t.Run("team leader earns across the whole team", func(t *testing.T) {
		got := Summarize(tlID, items)
		assert.Equal(t, 3, got.SalesCount)
		assert.True(t, got.AsTeamLeader.Equal(types.NewMoney(601.50)), "decimal sum must be exact")
	})

	t.Run("regional manager slot", func(t *testing.T) {
		got := Summarize(rmID, items)
		assert.True(t, got.AsRegionalManager.Equal(types.NewMoney(300.75)))
	})

	t.Run("stranger earns nothing", func(t *testing.T) {
		got := Summarize(id.New(), items)
		assert.Equal(t, 0, got.SalesCount)
		assert.True(t, got.Total.IsZero())
	})
}

func TestResolveBeneficiaries_SellerAboveLeafTier(t *testing.T) {
	rm, tl, fo := testHierarchy()
	all := []*hierarchy.User{rm, tl, fo}

	t.Run("team leader seller occupies own slot", func(t *testing.T) {
		gotTL, gotRM := resolveBeneficiaries(tl, all)
		require.NotNil(t, gotTL)
		assert.Equal(t, tl.ID, *gotTL)
		require.NotNil(t, gotRM)
		assert.Equal(t, rm.ID, *gotRM)
	})

	t.Run("regional manager seller has no team leader slot", func(t *testing.T) {
		gotTL, gotRM := resolveBeneficiaries(rm, all)
		assert.Nil(t, gotTL)
		require.NotNil(t, gotRM)
		assert.Equal(t, rm.ID, *gotRM)
	})

	t.Run("unlinked field officer leaves slots empty", func(t *testing.T) {
		orphan := &hierarchy.User{ID: id.New(), Role: hierarchy.RoleFieldOfficer, IsActive: true}
		gotTL, gotRM := resolveBeneficiaries(orphan, all)
		assert.Nil(t, gotTL)
		assert.Nil(t, gotRM)
	})
}
