package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Member{},
		&domain.Checkin{},
		&domain.Sale{},
		&domain.Lead{},
		&domain.ImportBatch{},
	))
	return conn
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestWriteMembersAppendAndReplace(t *testing.T) {
	ctx := context.Background()
	repo := Provide(setupDB(t))

	fee := 49.99
	first := []domain.Member{
		{MemberID: "M1", MembershipType: "Premium", Location: "Downtown", JoinDate: day(2024, 1, 1), SignupDate: day(2024, 1, 1), MonthlyFee: &fee, IsActive: true},
		{MemberID: "M2", MembershipType: "Basic", Location: "Uptown", JoinDate: day(2024, 2, 1), SignupDate: day(2024, 2, 1), IsActive: false, CancellationDate: day(2024, 5, 1)},
	}
	require.NoError(t, repo.WriteMembers(ctx, first, domain.ModeAppend))

	members, err := repo.Members(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "M1", members[0].MemberID)
	require.NotNil(t, members[0].MonthlyFee)
	assert.Equal(t, 49.99, *members[0].MonthlyFee)
	assert.False(t, members[1].IsActive)
	assert.Nil(t, members[1].MonthlyFee)

	replacement := []domain.Member{
		{MemberID: "M9", MembershipType: "Family", Location: "Downtown", JoinDate: day(2024, 3, 1), SignupDate: day(2024, 3, 1), IsActive: true},
	}
	require.NoError(t, repo.WriteMembers(ctx, replacement, domain.ModeReplace))

	members, err = repo.Members(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "M9", members[0].MemberID)
}

func TestWriteMembersDuplicateKeyIsValidation(t *testing.T) {
	ctx := context.Background()
	repo := Provide(setupDB(t))

	rows := []domain.Member{{MemberID: "M1", JoinDate: day(2024, 1, 1), IsActive: true}}
	require.NoError(t, repo.WriteMembers(ctx, rows, domain.ModeAppend))

	err := repo.WriteMembers(ctx, rows, domain.ModeAppend)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	members, err := repo.Members(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestReplaceRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	repo := Provide(setupDB(t))

	require.NoError(t, repo.WriteCheckins(ctx, []domain.Checkin{
		{CheckinID: "C1", MemberID: "M1", CheckinDate: *day(2024, 6, 1), Location: "Downtown"},
	}, domain.ModeAppend))

	dup := []domain.Checkin{
		{CheckinID: "C2", MemberID: "M1", CheckinDate: *day(2024, 6, 2), Location: "Downtown"},
		{CheckinID: "C2", MemberID: "M1", CheckinDate: *day(2024, 6, 3), Location: "Downtown"},
	}
	err := repo.WriteCheckins(ctx, dup, domain.ModeReplace)
	require.Error(t, err)

	checkins, err := repo.Checkins(ctx)
	require.NoError(t, err)
	require.Len(t, checkins, 1)
	assert.Equal(t, "C1", checkins[0].CheckinID)
}

func TestCountsAndImports(t *testing.T) {
	ctx := context.Background()
	repo := Provide(setupDB(t))

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.True(t, counts.Empty())

	require.NoError(t, repo.WriteSales(ctx, []domain.Sale{
		{ID: 1, Date: *day(2024, 1, 5), Amount: 100, Type: "Membership", Location: "Downtown", Product: "Premium"},
	}, domain.ModeAppend))
	require.NoError(t, repo.WriteLeads(ctx, []domain.Lead{
		{ID: 2, Date: *day(2024, 1, 6), LeadSource: "Website", Location: "Downtown", TourScheduled: true},
	}, domain.ModeAppend))

	counts, err = repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Counts{Sales: 1, Leads: 1}, counts)

	older := domain.ImportBatch{ID: 10, Entity: "members", Mode: domain.ModeAppend, Filename: "a.csv", RowsImported: 3, ColumnNames: datatypes.JSON(`["member_id"]`), CreatedAt: *day(2024, 1, 1)}
	newer := domain.ImportBatch{ID: 11, Entity: "checkins", Mode: domain.ModeReplace, Filename: "b.csv", RowsImported: 5, ColumnNames: datatypes.JSON(`["checkin_id"]`), CreatedAt: *day(2024, 2, 1)}
	require.NoError(t, repo.RecordImport(ctx, &older))
	require.NoError(t, repo.RecordImport(ctx, &newer))

	batches, err := repo.ListImports(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "checkins", batches[0].Entity)
	assert.Equal(t, domain.ModeReplace, batches[0].Mode)
}
