package service_test

import (
	"context"
	"testing"

	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"github.com/mautops/checksheet-gin/internal/repository"
	"github.com/mautops/checksheet-gin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupLineServiceTest 创建行项目服务及其父检查表
func setupLineServiceTest(t *testing.T, variant string, serial string) (*gorm.DB, service.LineService, *model.ChecksheetModel) {
	db := setupTestDBForService(t)
	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	sheetSvc := service.NewChecksheetService(db, auditSvc)
	lineSvc := service.NewLineService(db, auditSvc)

	sheet, err := sheetSvc.Create(context.Background(), inspector, &service.CreateChecksheetRequest{
		Variant: variant, SerialNumber: serial,
	})
	require.NoError(t, err)

	return db, lineSvc, sheet
}

// TestLineService_SaveMeasurement_VerdictComputed 测试判定结果由服务计算
func TestLineService_SaveMeasurement_VerdictComputed(t *testing.T) {
	_, lineSvc, sheet := setupLineServiceTest(t, "dir", "DIR-001")

	// 区间内 ok
	line, err := lineSvc.SaveMeasurement(context.Background(), inspector, sheet.ID, &service.SaveMeasurementRequest{
		Name: "孔径", Nominal: 5.0, ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.00,
	})
	require.NoError(t, err)
	assert.Equal(t, policy.VerdictOK, line.Verdict)

	// 更新实测值越界后判定翻转为 ng
	updated, err := lineSvc.SaveMeasurement(context.Background(), inspector, sheet.ID, &service.SaveMeasurementRequest{
		ID: line.ID, Name: "孔径", Nominal: 5.0, ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.05,
	})
	require.NoError(t, err)
	assert.Equal(t, line.ID, updated.ID)
	assert.Equal(t, policy.VerdictNG, updated.Verdict)
}

// TestLineService_SaveMeasurement_InvalidTolerance 测试非法公差区间
func TestLineService_SaveMeasurement_InvalidTolerance(t *testing.T) {
	_, lineSvc, sheet := setupLineServiceTest(t, "dir", "DIR-001")

	_, err := lineSvc.SaveMeasurement(context.Background(), inspector, sheet.ID, &service.SaveMeasurementRequest{
		Name: "孔径", ToleranceMin: 5.02, ToleranceMax: 4.98, Actual: 5.0,
	})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)
}

// TestLineService_InvalidItemName 测试测量项和终检项名称校验
func TestLineService_InvalidItemName(t *testing.T) {
	db, lineSvc, dirSheet := setupLineServiceTest(t, "dir", "DIR-001")

	// 含脚本片段的名称被拒绝
	_, err := lineSvc.SaveMeasurement(context.Background(), inspector, dirSheet.ID, &service.SaveMeasurementRequest{
		Name: "<script>alert(1)</script>", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.0,
	})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)

	// 批量新增中任一行名称非法,整批拒绝且无任何行落盘
	_, err = lineSvc.BulkAddMeasurements(context.Background(), inspector, dirSheet.ID, []*service.MeasurementInput{
		{Name: "外径", ToleranceMin: 9.95, ToleranceMax: 10.05, Actual: 10.0},
		{Name: "x'; delete from measurement_lines --", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.0},
	})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)

	var count int64
	_ = db.Model(&model.MeasurementLineModel{}).Count(&count)
	assert.Equal(t, int64(0), count)

	_, fiSvc, fiSheet := setupLineServiceTest(t, "fi", "FI-001")
	_, err = fiSvc.SaveInspectionLine(context.Background(), inspector, fiSheet.ID, &service.SaveInspectionLineRequest{
		ItemName: "外观'; drop table inspection_lines", Result: "good",
	})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)
}

// TestLineService_SaveMeasurement_VariantMismatch 测试测量行只能挂在 DIR 检查表下
func TestLineService_SaveMeasurement_VariantMismatch(t *testing.T) {
	_, lineSvc, sheet := setupLineServiceTest(t, "fi", "FI-001")

	_, err := lineSvc.SaveMeasurement(context.Background(), inspector, sheet.ID, &service.SaveMeasurementRequest{
		Name: "孔径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.0,
	})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)
}

// TestLineService_SaveMeasurement_OwnershipInherited 测试行项目继承父检查表所有权
func TestLineService_SaveMeasurement_OwnershipInherited(t *testing.T) {
	_, lineSvc, sheet := setupLineServiceTest(t, "dir", "DIR-001")

	// 其他检验员不能在别人的检查表上加行
	_, err := lineSvc.SaveMeasurement(context.Background(), otherInspector, sheet.ID, &service.SaveMeasurementRequest{
		Name: "孔径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.0,
	})
	assert.ErrorIs(t, err, policy.ErrNotOwner)

	// 主管不受所有权限制
	_, err = lineSvc.SaveMeasurement(context.Background(), supervisor, sheet.ID, &service.SaveMeasurementRequest{
		Name: "孔径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.0,
	})
	assert.NoError(t, err)
}

// TestLineService_SaveMeasurement_ParentMissing 测试父检查表不存在
func TestLineService_SaveMeasurement_ParentMissing(t *testing.T) {
	db := setupTestDBForService(t)
	lineSvc := service.NewLineService(db, nil)

	_, err := lineSvc.SaveMeasurement(context.Background(), inspector, "missing", &service.SaveMeasurementRequest{
		Name: "孔径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.0,
	})
	assert.ErrorIs(t, err, policy.ErrNotFound)
}

// TestLineService_BulkAddMeasurements_AllOrNothing 测试批量新增的原子性
func TestLineService_BulkAddMeasurements_AllOrNothing(t *testing.T) {
	db, lineSvc, sheet := setupLineServiceTest(t, "dir", "DIR-001")

	// 第二行公差非法,整批失败
	_, err := lineSvc.BulkAddMeasurements(context.Background(), inspector, sheet.ID, []*service.MeasurementInput{
		{Name: "外径", ToleranceMin: 9.95, ToleranceMax: 10.05, Actual: 10.0},
		{Name: "内径", ToleranceMin: 5.02, ToleranceMax: 4.98, Actual: 5.0},
	})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)

	var count int64
	require.NoError(t, db.Model(&model.MeasurementLineModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// 全部合法时整批写入
	lines, err := lineSvc.BulkAddMeasurements(context.Background(), inspector, sheet.ID, []*service.MeasurementInput{
		{Name: "外径", ToleranceMin: 9.95, ToleranceMax: 10.05, Actual: 10.0},
		{Name: "内径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.04},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, policy.VerdictOK, lines[0].Verdict)
	assert.Equal(t, policy.VerdictNG, lines[1].Verdict)
}

// TestLineService_DeleteMeasurement 测试删除测量行
func TestLineService_DeleteMeasurement(t *testing.T) {
	db, lineSvc, sheet := setupLineServiceTest(t, "dir", "DIR-001")

	line, err := lineSvc.SaveMeasurement(context.Background(), inspector, sheet.ID, &service.SaveMeasurementRequest{
		Name: "孔径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.0,
	})
	require.NoError(t, err)

	// 其他检验员不能删除
	err = lineSvc.DeleteMeasurement(context.Background(), otherInspector, line.ID)
	assert.ErrorIs(t, err, policy.ErrNotOwner)

	err = lineSvc.DeleteMeasurement(context.Background(), inspector, line.ID)
	require.NoError(t, err)

	// 软删除后不可见
	lines, err := repository.NewMeasurementLineRepository(db).FindByChecksheet(sheet.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// 重复删除返回 NotFound
	err = lineSvc.DeleteMeasurement(context.Background(), inspector, line.ID)
	assert.ErrorIs(t, err, policy.ErrNotFound)
}

// TestLineService_SaveInspectionLine 测试终检行读写
func TestLineService_SaveInspectionLine(t *testing.T) {
	_, lineSvc, sheet := setupLineServiceTest(t, "fi", "FI-001")

	line, err := lineSvc.SaveInspectionLine(context.Background(), inspector, sheet.ID, &service.SaveInspectionLineRequest{
		ItemName: "外观检查", Result: "good",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.InspectionGood, line.Result)

	// 更新为返修后合格
	updated, err := lineSvc.SaveInspectionLine(context.Background(), inspector, sheet.ID, &service.SaveInspectionLineRequest{
		ID: line.ID, ItemName: "外观检查", Result: "after_repair", Remark: "去毛刺后复检",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.InspectionAfterRepair, updated.Result)

	// 未知状态被拒绝
	_, err = lineSvc.SaveInspectionLine(context.Background(), inspector, sheet.ID, &service.SaveInspectionLineRequest{
		ItemName: "外观检查", Result: "passed",
	})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)
}

// TestLineService_BulkAddInspectionLines 测试批量新增终检行
func TestLineService_BulkAddInspectionLines(t *testing.T) {
	db, lineSvc, sheet := setupLineServiceTest(t, "fi", "FI-001")

	// 含未知状态,整批失败
	_, err := lineSvc.BulkAddInspectionLines(context.Background(), inspector, sheet.ID, []*service.InspectionLineInput{
		{ItemName: "外观检查", Result: "good"},
		{ItemName: "功能测试", Result: "passed"},
	})
	assert.ErrorIs(t, err, policy.ErrInvalidInput)

	var count int64
	require.NoError(t, db.Model(&model.InspectionLineModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	lines, err := lineSvc.BulkAddInspectionLines(context.Background(), inspector, sheet.ID, []*service.InspectionLineInput{
		{ItemName: "外观检查", Result: "good"},
		{ItemName: "功能测试", Result: "na", Remark: "此批次不适用"},
	})
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

// TestLineService_ApprovedParentLocked 测试批准后检验员不能动行项目
func TestLineService_ApprovedParentLocked(t *testing.T) {
	db, lineSvc, sheet := setupLineServiceTest(t, "dir", "DIR-001")
	sheetSvc := service.NewChecksheetService(db, nil)

	line, err := lineSvc.SaveMeasurement(context.Background(), inspector, sheet.ID, &service.SaveMeasurementRequest{
		Name: "孔径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.0,
	})
	require.NoError(t, err)

	_, err = sheetSvc.Transition(context.Background(), supervisor, sheet.ID, &service.TransitionRequest{Status: "approved"})
	require.NoError(t, err)

	// 检验员被锁定
	_, err = lineSvc.SaveMeasurement(context.Background(), inspector, sheet.ID, &service.SaveMeasurementRequest{
		ID: line.ID, Name: "孔径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.01,
	})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	err = lineSvc.DeleteMeasurement(context.Background(), inspector, line.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden)

	// 主管仍可修正
	_, err = lineSvc.SaveMeasurement(context.Background(), supervisor, sheet.ID, &service.SaveMeasurementRequest{
		ID: line.ID, Name: "孔径", ToleranceMin: 4.98, ToleranceMax: 5.02, Actual: 5.01,
	})
	assert.NoError(t, err)
}
