package sales

import (
	"context"
	"time"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/core/tx"
	"telstock/internal/core/types"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/domain/inventory"
	"telstock/pkg/logger"
)

const prefixSale = "SAL"

// ReferenceGenerator produces sequential sale numbers.
type ReferenceGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// AuditWriter records sales for the audit trail.
type AuditWriter interface {
	Record(ctx context.Context, action, entity string, entityID id.ID, payload any) error
}

// Service executes sales and answers commission queries.
type Service struct {
	repo      Repository
	inventory inventory.Repository
	users     *hierarchy.Service
	txm       tx.Manager
	refs      ReferenceGenerator
	audit     AuditWriter
}

// NewService creates a new sales service. audit may be nil.
func NewService(
	repo Repository,
	inv inventory.Repository,
	users *hierarchy.Service,
	txm tx.Manager,
	refs ReferenceGenerator,
	audit AuditWriter,
) *Service {
	return &Service{
		repo:      repo,
		inventory: inv,
		users:     users,
		txm:       txm,
		refs:      refs,
		audit:     audit,
	}
}

// Sell marks a held unit as sold and records the sale with a commission
// snapshot. The seller must be the current holder; sold is terminal and
// locked units cannot be sold. Status update, sale record and audit entry
// commit in one transaction.
func (s *Service) Sell(ctx context.Context, actorID id.ID, imei, customerName, customerPhone string) (*Sale, error) {
	actor, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	all, err := s.users.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var sale *Sale
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		unit, err := s.inventory.GetByNumber(ctx, imei)
		if err != nil {
			return err
		}
		if unit.Status == inventory.StatusSold {
			return apperror.NewBusinessRule(apperror.CodeImeiSold,
				"This IMEI has already been sold").WithDetail("imei", imei)
		}
		if !unit.Transferable() {
			return apperror.NewImeiNotAvailable(unit.Number, string(unit.Status))
		}
		if !unit.HeldBy(actor.ID) {
			return apperror.NewNotStockHolder(unit.Number)
		}

		ref, err := s.refs.Next(ctx, prefixSale)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		unit.Status = inventory.StatusSold
		unit.SoldAt = &now
		unit.SoldBy = &actor.ID
		if err := s.inventory.Update(ctx, unit); err != nil {
			return err
		}

		tlID, rmID := resolveBeneficiaries(actor, all)
		sale = &Sale{
			ID:                id.New(),
			Reference:         ref,
			Imei:              unit.Number,
			ProductID:         unit.ProductID,
			Price:             unit.SellingPrice,
			CommissionFO:      unit.CommissionFO,
			CommissionTL:      unit.CommissionTL,
			CommissionRM:      unit.CommissionRM,
			SoldByID:          actor.ID,
			TeamLeaderID:      tlID,
			RegionalManagerID: rmID,
			CustomerName:      customerName,
			CustomerPhone:     customerPhone,
			SoldAt:            now,
			CreatedAt:         now,
		}
		if err := s.repo.Create(ctx, sale); err != nil {
			return err
		}
		if s.audit != nil {
			if err := s.audit.Record(ctx, "imei.sold", "sale", sale.ID, sale); err != nil {
				logger.Warn(ctx, "audit write failed", "action", "imei.sold", "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "unit sold",
		"imei", imei, "sold_by", actorID, "reference", sale.Reference)
	return sale, nil
}

// List returns sales matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]*Sale, int64, error) {
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Commissions aggregates a user's commission earnings over a period.
func (s *Service) Commissions(ctx context.Context, userID id.ID, from, to time.Time) (*CommissionSummary, error) {
	items, err := s.repo.ListByBeneficiary(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return Summarize(userID, items), nil
}

// Summarize computes the commission totals one user earned across sales,
// split by the slot they occupied in each.
func Summarize(userID id.ID, items []*Sale) *CommissionSummary {
	summary := &CommissionSummary{
		UserID:            userID,
		AsFieldOfficer:    types.ZeroMoney(),
		AsTeamLeader:      types.ZeroMoney(),
		AsRegionalManager: types.ZeroMoney(),
		Total:             types.ZeroMoney(),
	}

	for _, sale := range items {
		earned := false
		if sale.SoldByID == userID {
			summary.AsFieldOfficer = summary.AsFieldOfficer.Add(sale.CommissionFO)
			earned = true
		}
		if sale.TeamLeaderID != nil && *sale.TeamLeaderID == userID {
			summary.AsTeamLeader = summary.AsTeamLeader.Add(sale.CommissionTL)
			earned = true
		}
		if sale.RegionalManagerID != nil && *sale.RegionalManagerID == userID {
			summary.AsRegionalManager = summary.AsRegionalManager.Add(sale.CommissionRM)
			earned = true
		}
		if earned {
			summary.SalesCount++
		}
	}

	summary.Total = summary.AsFieldOfficer.
		Add(summary.AsTeamLeader).
		Add(summary.AsRegionalManager)
	return summary
}

// resolveBeneficiaries walks the seller's upward links to find the team
// leader and regional manager slots. A seller above field-officer tier
// occupies their own slot.
func resolveBeneficiaries(seller *hierarchy.User, all []*hierarchy.User) (tlID, rmID *id.ID) {
	byID := make(map[id.ID]*hierarchy.User, len(all))
	for _, u := range all {
		byID[u.ID] = u
	}

	var tl *hierarchy.User
	switch seller.Role {
	case hierarchy.RoleFieldOfficer:
		if seller.TeamLeaderID != nil {
			tl = byID[*seller.TeamLeaderID]
		}
	case hierarchy.RoleTeamLeader:
		tl = seller
	}
	if tl != nil {
		tlID = &tl.ID
		if tl.RegionalManagerID != nil {
			if rm := byID[*tl.RegionalManagerID]; rm != nil {
				rmID = &rm.ID
			}
		}
	}
	if seller.Role == hierarchy.RoleRegionalManager {
		rmID = &seller.ID
	}
	return tlID, rmID
}
