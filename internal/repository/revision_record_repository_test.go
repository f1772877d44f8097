package repository_test

import (
	"testing"
	"time"

	"github.com/mautops/checksheet-gin/internal/model"
	"github.com/mautops/checksheet-gin/internal/policy"
	"github.com/mautops/checksheet-gin/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDBForRevision 创建修订记录测试数据库
func setupTestDBForRevision(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.RevisionRecordModel{})
	require.NoError(t, err)

	return db
}

// TestRevisionRecordRepository_NextNumber 测试修订号单调递增
func TestRevisionRecordRepository_NextNumber(t *testing.T) {
	db := setupTestDBForRevision(t)
	repo := repository.NewRevisionRecordRepository(db)

	// 无记录时从 1 开始
	next, err := repo.NextNumber(policy.VariantDIR, "cs-001")
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	// 依次追加,修订号连续且互不重复
	for i := 1; i <= 3; i++ {
		next, err := repo.NextNumber(policy.VariantDIR, "cs-001")
		require.NoError(t, err)
		assert.Equal(t, i, next)

		err = repo.Save(&model.RevisionRecordModel{
			ID:             "rev-00" + string(rune('0'+i)),
			ReferenceType:  policy.VariantDIR,
			ReferenceID:    "cs-001",
			RevisionNumber: next,
			Note:           "尺寸超差,退回修订",
			RevisedBy:      "user-002",
			CreatedAt:      time.Now(),
		})
		require.NoError(t, err)
	}

	next, err = repo.NextNumber(policy.VariantDIR, "cs-001")
	require.NoError(t, err)
	assert.Equal(t, 4, next)
}

// TestRevisionRecordRepository_NumberScope 测试修订号按检查表独立计数
func TestRevisionRecordRepository_NumberScope(t *testing.T) {
	db := setupTestDBForRevision(t)
	repo := repository.NewRevisionRecordRepository(db)

	err := repo.Save(&model.RevisionRecordModel{
		ID:             "rev-001",
		ReferenceType:  policy.VariantDIR,
		ReferenceID:    "cs-001",
		RevisionNumber: 1,
		RevisedBy:      "user-002",
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)

	// 另一张检查表从 1 开始
	next, err := repo.NextNumber(policy.VariantDIR, "cs-002")
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	// 同 ID 不同类型也独立计数
	next, err = repo.NextNumber(policy.VariantFI, "cs-001")
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

// TestRevisionRecordRepository_UniqueSequence 测试唯一索引兜底重号
func TestRevisionRecordRepository_UniqueSequence(t *testing.T) {
	db := setupTestDBForRevision(t)
	repo := repository.NewRevisionRecordRepository(db)

	record := &model.RevisionRecordModel{
		ID:             "rev-001",
		ReferenceType:  policy.VariantDIR,
		ReferenceID:    "cs-001",
		RevisionNumber: 1,
		RevisedBy:      "user-002",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, repo.Save(record))

	// 同一检查表上的重复修订号被唯一索引拒绝
	dup := &model.RevisionRecordModel{
		ID:             "rev-002",
		ReferenceType:  policy.VariantDIR,
		ReferenceID:    "cs-001",
		RevisionNumber: 1,
		RevisedBy:      "user-003",
		CreatedAt:      time.Now(),
	}
	err := repo.Save(dup)
	assert.Error(t, err)
}

// TestRevisionRecordRepository_FindByReference 测试按检查表查找修订记录
func TestRevisionRecordRepository_FindByReference(t *testing.T) {
	db := setupTestDBForRevision(t)
	repo := repository.NewRevisionRecordRepository(db)

	// 乱序写入
	for _, n := range []int{2, 1, 3} {
		err := repo.Save(&model.RevisionRecordModel{
			ID:             "rev-00" + string(rune('0'+n)),
			ReferenceType:  policy.VariantFI,
			ReferenceID:    "cs-001",
			RevisionNumber: n,
			RevisedBy:      "user-002",
			CreatedAt:      time.Now(),
		})
		require.NoError(t, err)
	}

	records, err := repo.FindByReference(policy.VariantFI, "cs-001")
	require.NoError(t, err)
	require.Len(t, records, 3)

	// 按修订号升序返回
	for i, record := range records {
		assert.Equal(t, i+1, record.RevisionNumber)
	}
}
