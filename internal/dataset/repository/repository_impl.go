package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"github.com/smallbiznis/churnlytics/pkg/db"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type repo struct {
	db *gorm.DB
}

func Provide(conn *gorm.DB) domain.Repository {
	return &repo{db: conn}
}

func (r *repo) Members(ctx context.Context) ([]domain.Member, error) {
	var rows []domain.Member
	if err := r.db.WithContext(ctx).Order("member_id").Find(&rows).Error; err != nil {
		return nil, apperror.Processing("query members", err)
	}
	return rows, nil
}

func (r *repo) Checkins(ctx context.Context) ([]domain.Checkin, error) {
	var rows []domain.Checkin
	if err := r.db.WithContext(ctx).Order("checkin_date, checkin_id").Find(&rows).Error; err != nil {
		return nil, apperror.Processing("query checkins", err)
	}
	return rows, nil
}

func (r *repo) Sales(ctx context.Context) ([]domain.Sale, error) {
	var rows []domain.Sale
	if err := r.db.WithContext(ctx).Order("date, id").Find(&rows).Error; err != nil {
		return nil, apperror.Processing("query sales", err)
	}
	return rows, nil
}

func (r *repo) Leads(ctx context.Context) ([]domain.Lead, error) {
	var rows []domain.Lead
	if err := r.db.WithContext(ctx).Order("date, id").Find(&rows).Error; err != nil {
		return nil, apperror.Processing("query leads", err)
	}
	return rows, nil
}

func (r *repo) Counts(ctx context.Context) (domain.Counts, error) {
	var counts domain.Counts
	stmt := r.db.WithContext(ctx)
	if err := stmt.Model(&domain.Member{}).Count(&counts.Members).Error; err != nil {
		return domain.Counts{}, apperror.Processing("count members", err)
	}
	if err := stmt.Model(&domain.Checkin{}).Count(&counts.Checkins).Error; err != nil {
		return domain.Counts{}, apperror.Processing("count checkins", err)
	}
	if err := stmt.Model(&domain.Sale{}).Count(&counts.Sales).Error; err != nil {
		return domain.Counts{}, apperror.Processing("count sales", err)
	}
	if err := stmt.Model(&domain.Lead{}).Count(&counts.Leads).Error; err != nil {
		return domain.Counts{}, apperror.Processing("count leads", err)
	}
	return counts, nil
}

func (r *repo) WriteMembers(ctx context.Context, rows []domain.Member, mode domain.WriteMode) error {
	return write(ctx, r.db, "members", rows, mode)
}

func (r *repo) WriteCheckins(ctx context.Context, rows []domain.Checkin, mode domain.WriteMode) error {
	return write(ctx, r.db, "checkins", rows, mode)
}

func (r *repo) WriteSales(ctx context.Context, rows []domain.Sale, mode domain.WriteMode) error {
	return write(ctx, r.db, "sales", rows, mode)
}

func (r *repo) WriteLeads(ctx context.Context, rows []domain.Lead, mode domain.WriteMode) error {
	return write(ctx, r.db, "leads", rows, mode)
}

func (r *repo) RecordImport(ctx context.Context, batch *domain.ImportBatch) error {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return apperror.Processing("record import", err)
	}
	return nil
}

func (r *repo) ListImports(ctx context.Context, limit int) ([]domain.ImportBatch, error) {
	var rows []domain.ImportBatch
	stmt := r.db.WithContext(ctx).Order("created_at desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&rows).Error; err != nil {
		return nil, apperror.Processing("list imports", err)
	}
	return rows, nil
}

// write inserts rows in batches inside one transaction. In replace mode the
// table is emptied first in the same transaction, so readers see either the
// old or the new table contents.
func write[T any](ctx context.Context, conn *gorm.DB, table string, rows []T, mode domain.WriteMode) error {
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if mode == domain.ModeReplace {
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
				return err
			}
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, insertBatchSize).Error
	})
	if err == nil {
		return nil
	}
	if db.IsDuplicateKeyErr(err) {
		return apperror.Validation("duplicate key while writing %s: %v", table, err)
	}
	return apperror.Processing("write "+table, err)
}
