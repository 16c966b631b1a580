package inventory

import (
	"context"
	"time"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/domain/hierarchy"
	"telstock/pkg/logger"
)

// BulkImportResult reports per-item outcome of a bulk registration.
type BulkImportResult struct {
	Success []string    `json:"success"`
	Failed  []ItemError `json:"failed"`
}

// ItemError pairs an IMEI number with the reason it was rejected.
type ItemError struct {
	Imei  string `json:"imei"`
	Error string `json:"error"`
}

// Service provides registration, status transitions and stock views.
type Service struct {
	repo  Repository
	audit AuditWriter
}

// AuditWriter records inventory mutations for the audit trail.
type AuditWriter interface {
	Record(ctx context.Context, action, entity string, entityID id.ID, payload any) error
}

// NewService creates a new inventory service. audit may be nil.
func NewService(repo Repository, audit AuditWriter) *Service {
	return &Service{repo: repo, audit: audit}
}

// Register stores a single new unit with status in_stock and no owner.
func (s *Service) Register(ctx context.Context, m *IMEI) error {
	s.prepare(m)
	if err := m.Validate(ctx); err != nil {
		return err
	}
	if existing, err := s.repo.GetByNumber(ctx, m.Number); err == nil && existing != nil {
		return apperror.NewDuplicate("IMEI", "number", m.Number)
	} else if err != nil && !apperror.IsNotFound(err) {
		return err
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}
	s.recordAudit(ctx, "imei.registered", m)

	logger.Info(ctx, "IMEI registered", "imei", m.Number, "product_id", m.ProductID)
	return nil
}

// BulkRegister imports many units at once. Items failing validation or
// already registered are reported per-item; the valid remainder is inserted
// in a single batch.
func (s *Service) BulkRegister(ctx context.Context, items []*IMEI) (*BulkImportResult, error) {
	result := &BulkImportResult{Success: []string{}, Failed: []ItemError{}}
	if len(items) == 0 {
		return result, nil
	}

	seen := make(map[string]bool, len(items))
	valid := make([]*IMEI, 0, len(items))

	for _, m := range items {
		s.prepare(m)
		if err := m.Validate(ctx); err != nil {
			result.Failed = append(result.Failed, ItemError{Imei: m.Number, Error: err.Error()})
			continue
		}
		if seen[m.Number] {
			result.Failed = append(result.Failed, ItemError{Imei: m.Number, Error: "duplicate IMEI in batch"})
			continue
		}
		seen[m.Number] = true

		if existing, err := s.repo.GetByNumber(ctx, m.Number); err == nil && existing != nil {
			result.Failed = append(result.Failed, ItemError{Imei: m.Number, Error: "IMEI already registered"})
			continue
		} else if err != nil && !apperror.IsNotFound(err) {
			return nil, err
		}
		valid = append(valid, m)
	}

	if len(valid) > 0 {
		if _, err := s.repo.CreateBatch(ctx, valid); err != nil {
			return nil, err
		}
		for _, m := range valid {
			result.Success = append(result.Success, m.Number)
		}
	}

	logger.Info(ctx, "bulk IMEI import",
		"imported", len(result.Success), "rejected", len(result.Failed))
	return result, nil
}

// Get returns a unit by its IMEI number.
func (s *Service) Get(ctx context.Context, number string) (*IMEI, error) {
	if !ValidNumber(number) {
		return nil, apperror.NewValidation("IMEI must be a 15-digit number").
			WithDetail("value", number)
	}
	return s.repo.GetByNumber(ctx, number)
}

// List returns units matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]*IMEI, int64, error) {
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

// Lock freezes a unit from allocation and sale.
func (s *Service) Lock(ctx context.Context, number string) (*IMEI, error) {
	return s.transition(ctx, number, StatusLocked, func(m *IMEI) error {
		if m.Status == StatusSold {
			return apperror.NewBusinessRule(apperror.CodeImeiSold, "sold units cannot be locked")
		}
		if m.Status == StatusLocked {
			return apperror.NewConflict("IMEI is already locked")
		}
		return nil
	})
}

// Unlock releases a locked unit back to its ownership-derived status.
func (s *Service) Unlock(ctx context.Context, number string) (*IMEI, error) {
	m, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if m.Status != StatusLocked {
		return nil, apperror.NewConflict("IMEI is not locked")
	}

	if m.CurrentOwnerID != nil {
		m.Status = StatusAllocated
	} else {
		m.Status = StatusInStock
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "imei.unlocked", m)
	return m, nil
}

// MarkLost records a unit as lost. Sold units cannot be lost.
func (s *Service) MarkLost(ctx context.Context, number string) (*IMEI, error) {
	return s.transition(ctx, number, StatusLost, func(m *IMEI) error {
		if m.Status == StatusSold {
			return apperror.NewBusinessRule(apperror.CodeImeiSold, "sold units cannot be marked lost")
		}
		if m.Status == StatusLost {
			return apperror.NewConflict("IMEI is already marked lost")
		}
		return nil
	})
}

// MyStock derives the acting user's stock view: units they hold, excluding
// sold and locked. Admin additionally sees the unallocated pool, since
// unassigned inventory belongs to the root of the hierarchy.
func (s *Service) MyStock(ctx context.Context, actorID id.ID, role hierarchy.Role) ([]*IMEI, error) {
	owned, err := s.repo.ListOwnedBy(ctx, actorID, []Status{StatusSold, StatusLocked})
	if err != nil {
		return nil, err
	}
	if role != hierarchy.RoleAdmin {
		return owned, nil
	}

	pool, err := s.repo.ListUnallocated(ctx)
	if err != nil {
		return nil, err
	}
	return append(owned, pool...), nil
}

func (s *Service) prepare(m *IMEI) {
	if id.IsNil(m.ID) {
		m.ID = id.New()
	}
	m.Status = StatusInStock
	m.CurrentOwnerID = nil
	m.CurrentOwnerRole = ""
	if m.RegisteredAt.IsZero() {
		m.RegisteredAt = time.Now().UTC()
	}
}

func (s *Service) transition(ctx context.Context, number string, to Status, check func(*IMEI) error) (*IMEI, error) {
	m, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := check(m); err != nil {
		return nil, err
	}

	m.Status = to
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "imei.status."+string(to), m)
	return m, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, m *IMEI) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, action, "imei", m.ID, m); err != nil {
		logger.Warn(ctx, "audit write failed", "action", action, "error", err)
	}
}
