package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/core/types"
	"telstock/internal/domain/hierarchy"
)

type fakeRepo struct {
	units map[string]*IMEI
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{units: map[string]*IMEI{}}
}

func (f *fakeRepo) Create(ctx context.Context, m *IMEI) error {
	f.units[m.Number] = m
	return nil
}

func (f *fakeRepo) CreateBatch(ctx context.Context, items []*IMEI) (int64, error) {
	for _, m := range items {
		f.units[m.Number] = m
	}
	return int64(len(items)), nil
}

func (f *fakeRepo) GetByNumber(ctx context.Context, number string) (*IMEI, error) {
	if m, ok := f.units[number]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, apperror.NewNotFound("IMEI", number)
}

func (f *fakeRepo) GetByID(ctx context.Context, imeiID id.ID) (*IMEI, error) {
	for _, m := range f.units {
		if m.ID == imeiID {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("IMEI", imeiID)
}

func (f *fakeRepo) Update(ctx context.Context, m *IMEI) error {
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

func (f *fakeRepo) List(ctx context.Context, fl Filter) ([]*IMEI, error) { return nil, nil }
func (f *fakeRepo) Count(ctx context.Context, fl Filter) (int64, error) { return 0, nil }

func (f *fakeRepo) ListOwnedBy(ctx context.Context, ownerID id.ID, exclude []Status) ([]*IMEI, error) {
	var out []*IMEI
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

func (f *fakeRepo) ListUnallocated(ctx context.Context) ([]*IMEI, error) {
	var out []*IMEI
	for _, m := range f.units {
		if m.CurrentOwnerID == nil && (m.Status == StatusInStock || m.Status == StatusAllocated) {
			out = append(out, m)
		}
	}
	return out, nil
}

func validUnit(number string) *IMEI {
	return &IMEI{
		Number:       number,
		ProductID:    id.New(),
		SellingPrice: 1999900,
		CommissionFO: types.NewMoney(500),
		CommissionTL: types.NewMoney(200),
		CommissionRM: types.NewMoney(100),
		Source:       SourceDistributor,
	}
}

func TestRegister(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	m := validUnit("351234567890123")
	require.NoError(t, svc.Register(ctx, m))

	stored := repo.units["351234567890123"]
	require.NotNil(t, stored)
	assert.Equal(t, StatusInStock, stored.Status)
	assert.Nil(t, stored.CurrentOwnerID)
	assert.False(t, stored.RegisteredAt.IsZero())
	assert.False(t, id.IsNil(stored.ID))
}

func TestRegister_Rejections(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	t.Run("malformed number", func(t *testing.T) {
		tests := []string{"", "12345", "3512345678901234", "35123456789012a"}
		for _, number := range tests {
			err := svc.Register(ctx, validUnit(number))
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok, "imei %q", number)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		require.NoError(t, svc.Register(ctx, validUnit("351234567890123")))
		err := svc.Register(ctx, validUnit("351234567890123"))
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
	})

	t.Run("unknown source company", func(t *testing.T) {
		m := validUnit("459876543210987")
		m.Source = "fell off a truck"
		err := svc.Register(ctx, m)
		require.Error(t, err)
	})
}

func TestBulkRegister(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, validUnit("111111111111111")))

	result, err := svc.BulkRegister(ctx, []*IMEI{
		validUnit("222222222222222"),
		validUnit("111111111111111"), // already registered
		validUnit("bad"),
		validUnit("333333333333333"),
		validUnit("333333333333333"), // duplicate within batch
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"222222222222222", "333333333333333"}, result.Success)
	require.Len(t, result.Failed, 3)
	assert.Len(t, repo.units, 3)
}

func TestBulkRegister_Empty(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	result, err := svc.BulkRegister(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Success)
	assert.Empty(t, result.Failed)
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()

	seed := func(status Status) (*Service, *fakeRepo) {
		repo := newFakeRepo()
		m := validUnit("351234567890123")
		m.ID = id.New()
		m.Status = status
		m.RegisteredAt = time.Now().UTC()
		repo.units[m.Number] = m
		return NewService(repo, nil), repo
	}

	t.Run("lock in-stock unit", func(t *testing.T) {
		svc, repo := seed(StatusInStock)
		got, err := svc.Lock(ctx, "351234567890123")
		require.NoError(t, err)
		assert.Equal(t, StatusLocked, got.Status)
		assert.Equal(t, StatusLocked, repo.units["351234567890123"].Status)
	})

	t.Run("lock sold unit rejected", func(t *testing.T) {
		svc, _ := seed(StatusSold)
		_, err := svc.Lock(ctx, "351234567890123")
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeImeiSold, appErr.Code)
	})

	t.Run("unlock returns to ownership-derived status", func(t *testing.T) {
		svc, repo := seed(StatusLocked)
		got, err := svc.Unlock(ctx, "351234567890123")
		require.NoError(t, err)
		assert.Equal(t, StatusInStock, got.Status, "no owner, back to in_stock")

		owner := id.New()
		repo.units["351234567890123"].Status = StatusLocked
		repo.units["351234567890123"].CurrentOwnerID = &owner
		got, err = svc.Unlock(ctx, "351234567890123")
		require.NoError(t, err)
		assert.Equal(t, StatusAllocated, got.Status, "owned, back to allocated")
	})

	t.Run("unlock non-locked unit rejected", func(t *testing.T) {
		svc, _ := seed(StatusInStock)
		_, err := svc.Unlock(ctx, "351234567890123")
		require.Error(t, err)
	})

	t.Run("mark lost", func(t *testing.T) {
		svc, _ := seed(StatusAllocated)
		got, err := svc.MarkLost(ctx, "351234567890123")
		require.NoError(t, err)
		assert.Equal(t, StatusLost, got.Status)
	})

	t.Run("mark sold unit lost rejected", func(t *testing.T) {
		svc, _ := seed(StatusSold)
		_, err := svc.MarkLost(ctx, "351234567890123")
		require.Error(t, err)
	})

	t.Run("mark already-lost unit rejected", func(t *testing.T) {
		svc, repo := seed(StatusLost)
		_, err := svc.MarkLost(ctx, "351234567890123")
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
		assert.Equal(t, int64(0), repo.units["351234567890123"].Version, "no redundant update")
	})
}

func TestMyStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	adminID, foID := id.New(), id.New()

	add := func(number string, owner *id.ID, status Status) {
		m := validUnit(number)
		m.ID = id.New()
		m.Status = status
		m.CurrentOwnerID = owner
		repo.units[number] = m
	}

	add("111111111111111", &foID, StatusAllocated)
	add("222222222222222", &foID, StatusSold)   // excluded everywhere
	add("333333333333333", &foID, StatusLocked) // excluded everywhere
	add("444444444444444", nil, StatusInStock)  // pool
	add("555555555555555", &adminID, StatusAllocated)

	t.Run("non-admin sees only own transferable units", func(t *testing.T) {
		got, err := svc.MyStock(ctx, foID, hierarchy.RoleFieldOfficer)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "111111111111111", got[0].Number)
	})

	t.Run("admin sees own units plus the unallocated pool", func(t *testing.T) {
		got, err := svc.MyStock(ctx, adminID, hierarchy.RoleAdmin)
		require.NoError(t, err)
		numbers := make([]string, len(got))
		for i, m := range got {
			numbers[i] = m.Number
		}
		assert.ElementsMatch(t, []string{"444444444444444", "555555555555555"}, numbers)
	})
}

func TestValidNumber(t *testing.T) {
	assert.True(t, ValidNumber("351234567890123"))
	assert.False(t, ValidNumber("35123456789012"))
	assert.False(t, ValidNumber("35123456789012x"))
	assert.False(t, ValidNumber(""))
}
