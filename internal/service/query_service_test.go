package service_test

import (
	"context"
	"testing"

	"github.com/mautops/checksheet-gin/internal/policy"
	"github.com/mautops/checksheet-gin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strptr(s string) *string { return &s }

// seedChecksheets 写入一组覆盖多类型多状态的检查表
func seedChecksheets(t *testing.T, db *gorm.DB) service.ChecksheetService {
	sheetSvc := newChecksheetService(db)

	for _, c := range []struct {
		variant string
		serial  string
		approve bool
	}{
		{"dir", "DIR-001", false},
		{"dir", "DIR-002", true},
		{"fi", "FI-001", false},
		{"fi", "FI-002", true},
		{"fi", "FI-003", false},
	} {
		sheet, err := sheetSvc.Create(context.Background(), inspector, &service.CreateChecksheetRequest{
			Variant: c.variant, SerialNumber: c.serial,
		})
		require.NoError(t, err)
		if c.approve {
			_, err = sheetSvc.Transition(context.Background(), supervisor, sheet.ID, &service.TransitionRequest{Status: "approved"})
			require.NoError(t, err)
		}
	}
	return sheetSvc
}

// TestQueryService_ListChecksheets_Filters 测试过滤条件
func TestQueryService_ListChecksheets_Filters(t *testing.T) {
	db := setupTestDBForService(t)
	seedChecksheets(t, db)
	querySvc := service.NewQueryService(db)

	// 按类型过滤
	sheets, total, err := querySvc.ListChecksheets(&service.ListChecksheetsFilter{Variant: strptr("fi")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, sheets, 3)

	// 按状态过滤
	sheets, total, err = querySvc.ListChecksheets(&service.ListChecksheetsFilter{Status: strptr("approved")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 组合过滤
	sheets, total, err = querySvc.ListChecksheets(&service.ListChecksheetsFilter{
		Variant: strptr("dir"), Status: strptr("approved"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "DIR-002", sheets[0].SerialNumber)

	// 序列号模糊匹配
	_, total, err = querySvc.ListChecksheets(&service.ListChecksheetsFilter{SerialNumber: strptr("FI-")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	// 按拥有者过滤
	_, total, err = querySvc.ListChecksheets(&service.ListChecksheetsFilter{OwnerID: strptr("user-999")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

// TestQueryService_ListChecksheets_InvalidFilter 测试非法过滤值
func TestQueryService_ListChecksheets_InvalidFilter(t *testing.T) {
	db := setupTestDBForService(t)
	querySvc := service.NewQueryService(db)

	_, _, err := querySvc.ListChecksheets(&service.ListChecksheetsFilter{Variant: strptr("qc")})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)

	_, _, err = querySvc.ListChecksheets(&service.ListChecksheetsFilter{Status: strptr("draft")})
	assert.ErrorIs(t, err, policy.ErrInvalidStatus)

	// 白名单外的排序字段被拒绝
	_, _, err = querySvc.ListChecksheets(&service.ListChecksheetsFilter{SortBy: "owner_id; DROP TABLE checksheets"})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)
}

// TestQueryService_ListChecksheets_Pagination 测试分页
func TestQueryService_ListChecksheets_Pagination(t *testing.T) {
	db := setupTestDBForService(t)
	seedChecksheets(t, db)
	querySvc := service.NewQueryService(db)

	sheets, total, err := querySvc.ListChecksheets(&service.ListChecksheetsFilter{
		Page: 1, PageSize: 2, SortBy: "serial_number", Order: "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, sheets, 2)
	assert.Equal(t, "DIR-001", sheets[0].SerialNumber)

	sheets, _, err = querySvc.ListChecksheets(&service.ListChecksheetsFilter{
		Page: 3, PageSize: 2, SortBy: "serial_number", Order: "asc",
	})
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "FI-003", sheets[0].SerialNumber)
}

// TestQueryService_GetBySerial 测试按序列号定位检查表
func TestQueryService_GetBySerial(t *testing.T) {
	db := setupTestDBForService(t)
	seedChecksheets(t, db)
	querySvc := service.NewQueryService(db)

	sheet, err := querySvc.GetChecksheetBySerial("dir", "DIR-001")
	require.NoError(t, err)
	assert.Equal(t, "DIR-001", sheet.SerialNumber)
	assert.Equal(t, policy.VariantDIR, sheet.Variant)

	// 序列号只在同类型内定位
	_, err = querySvc.GetChecksheetBySerial("fi", "DIR-001")
	assert.ErrorIs(t, err, policy.ErrNotFound)

	_, err = querySvc.GetChecksheetBySerial("qc", "DIR-001")
	assert.ErrorIs(t, err, policy.ErrInvalidInput)

	_, err = querySvc.GetChecksheetBySerial("dir", "DIR 001; DROP")
	assert.ErrorIs(t, err, policy.ErrInvalidInput)
}

// TestQueryService_ApprovalsByApprover 测试按签核人查审批台账
func TestQueryService_ApprovalsByApprover(t *testing.T) {
	db := setupTestDBForService(t)
	seedChecksheets(t, db)
	querySvc := service.NewQueryService(db)

	// seed 中由主管批准了两张检查表
	records, err := querySvc.GetApprovalsByApprover(supervisor.UserID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, supervisor.UserID, record.ApprovedBy)
	}

	records, err = querySvc.GetApprovalsByApprover("user-999")
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = querySvc.GetApprovalsByApprover("")
	assert.ErrorIs(t, err, policy.ErrInvalidInput)
}

// TestQueryService_Ledgers 测试台账查询
func TestQueryService_Ledgers(t *testing.T) {
	db := setupTestDBForService(t)
	sheetSvc := newChecksheetService(db)
	querySvc := service.NewQueryService(db)

	sheet, err := sheetSvc.Create(context.Background(), inspector, &service.CreateChecksheetRequest{
		Variant: "dir", SerialNumber: "DIR-001",
	})
	require.NoError(t, err)

	_, err = sheetSvc.Transition(context.Background(), supervisor, sheet.ID, &service.TransitionRequest{Status: "approved", Note: "首轮批准"})
	require.NoError(t, err)
	_, err = sheetSvc.Transition(context.Background(), supervisor, sheet.ID, &service.TransitionRequest{Status: "revision", Note: "退回复测"})
	require.NoError(t, err)

	approvals, err := querySvc.GetApprovals(sheet.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, "首轮批准", approvals[0].Note)

	revisions, err := querySvc.GetRevisions(sheet.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, 1, revisions[0].RevisionNumber)

	// 不存在的检查表
	_, err = querySvc.GetApprovals("missing")
	assert.ErrorIs(t, err, policy.ErrNotFound)
}

// TestQueryService_Lines 测试行项目查询
func TestQueryService_Lines(t *testing.T) {
	db := setupTestDBForService(t)
	sheetSvc := newChecksheetService(db)
	lineSvc := service.NewLineService(db, nil)
	querySvc := service.NewQueryService(db)

	sheet, err := sheetSvc.Create(context.Background(), inspector, &service.CreateChecksheetRequest{
		Variant: "dir", SerialNumber: "DIR-001",
	})
	require.NoError(t, err)

	_, err = lineSvc.BulkAddMeasurements(context.Background(), inspector, sheet.ID, []*service.MeasurementInput{
		{Name: "外径", ToleranceMin: 9.95, ToleranceMax: 10.05, Actual: 10.0},
		{Name: "内径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.0},
	})
	require.NoError(t, err)

	lines, err := querySvc.GetMeasurements(sheet.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	_, err = querySvc.GetMeasurements("missing")
	assert.ErrorIs(t, err, policy.ErrNotFound)
}
