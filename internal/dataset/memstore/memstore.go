// Package memstore is an in-memory domain.Repository used to drive the
// services without a database.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
)

type Store struct {
	mu       sync.RWMutex
	snap     domain.Snapshot
	imports  []domain.ImportBatch
	failWith error
}

func New(snap domain.Snapshot) *Store {
	return &Store{snap: snap}
}

// FailWith makes every subsequent read return err.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) Members(context.Context) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return append([]domain.Member(nil), s.snap.Members...), nil
}

func (s *Store) Checkins(context.Context) ([]domain.Checkin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return append([]domain.Checkin(nil), s.snap.Checkins...), nil
}

func (s *Store) Sales(context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return append([]domain.Sale(nil), s.snap.Sales...), nil
}

func (s *Store) Leads(context.Context) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return append([]domain.Lead(nil), s.snap.Leads...), nil
}

func (s *Store) Counts(context.Context) (domain.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return domain.Counts{}, s.failWith
	}
	return domain.Counts{
		Members:  int64(len(s.snap.Members)),
		Checkins: int64(len(s.snap.Checkins)),
		Sales:    int64(len(s.snap.Sales)),
		Leads:    int64(len(s.snap.Leads)),
	}, nil
}

func (s *Store) WriteMembers(_ context.Context, rows []domain.Member, mode domain.WriteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := merge(s.snap.Members, rows, mode, func(m domain.Member) string { return m.MemberID })
	if err != nil {
		return err
	}
	s.snap.Members = next
	return nil
}

func (s *Store) WriteCheckins(_ context.Context, rows []domain.Checkin, mode domain.WriteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := merge(s.snap.Checkins, rows, mode, func(c domain.Checkin) string { return c.CheckinID })
	if err != nil {
		return err
	}
	s.snap.Checkins = next
	return nil
}

func (s *Store) WriteSales(_ context.Context, rows []domain.Sale, mode domain.WriteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := merge(s.snap.Sales, rows, mode, func(v domain.Sale) string { return v.ID.String() })
	if err != nil {
		return err
	}
	s.snap.Sales = next
	return nil
}

func (s *Store) WriteLeads(_ context.Context, rows []domain.Lead, mode domain.WriteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := merge(s.snap.Leads, rows, mode, func(v domain.Lead) string { return v.ID.String() })
	if err != nil {
		return err
	}
	s.snap.Leads = next
	return nil
}

func (s *Store) RecordImport(_ context.Context, batch *domain.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports = append(s.imports, *batch)
	return nil
}

func (s *Store) ListImports(_ context.Context, limit int) ([]domain.ImportBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]domain.ImportBatch(nil), s.imports...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func merge[T any](current, rows []T, mode domain.WriteMode, key func(T) string) ([]T, error) {
	base := current
	if mode == domain.ModeReplace {
		base = nil
	}
	seen := make(map[string]struct{}, len(base)+len(rows))
	for _, row := range base {
		seen[key(row)] = struct{}{}
	}
	for _, row := range rows {
		k := key(row)
		if _, dup := seen[k]; dup {
			return nil, apperror.Validation("duplicate key %q", k)
		}
		seen[k] = struct{}{}
	}
	out := make([]T, 0, len(base)+len(rows))
	out = append(out, base...)
	return append(out, rows...), nil
}

var _ domain.Repository = (*Store)(nil)
