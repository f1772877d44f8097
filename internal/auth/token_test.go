package auth_test

import (
	"testing"
	"time"

	"github.com/mautops/checksheet-gin/internal/auth"
	"github.com/mautops/checksheet-gin/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenValidator_RoundTrip 测试签发和校验
func TestTokenValidator_RoundTrip(t *testing.T) {
	validator := auth.NewTokenValidator("checksheet-test", "test-secret")

	actor := policy.Actor{UserID: "user-001", Role: policy.RoleInspector}
	token, err := validator.SignToken(actor, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)
}

// TestTokenValidator_WrongSecret 测试密钥不匹配
func TestTokenValidator_WrongSecret(t *testing.T) {
	signer := auth.NewTokenValidator("checksheet-test", "secret-a")
	validator := auth.NewTokenValidator("checksheet-test", "secret-b")

	token, err := signer.SignToken(policy.Actor{UserID: "user-001", Role: policy.RoleOperator}, time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

// TestTokenValidator_WrongIssuer 测试签发方不匹配
func TestTokenValidator_WrongIssuer(t *testing.T) {
	signer := auth.NewTokenValidator("other-issuer", "test-secret")
	validator := auth.NewTokenValidator("checksheet-test", "test-secret")

	token, err := signer.SignToken(policy.Actor{UserID: "user-001", Role: policy.RoleOperator}, time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

// TestTokenValidator_Expired 测试过期令牌
func TestTokenValidator_Expired(t *testing.T) {
	validator := auth.NewTokenValidator("checksheet-test", "test-secret")

	token, err := validator.SignToken(policy.Actor{UserID: "user-001", Role: policy.RoleSupervisor}, -time.Minute)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

// TestTokenValidator_UnknownRole 测试未知角色声明
func TestTokenValidator_UnknownRole(t *testing.T) {
	validator := auth.NewTokenValidator("checksheet-test", "test-secret")

	_, err := validator.SignToken(policy.Actor{UserID: "user-001", Role: policy.Role("admin")}, time.Hour)
	assert.ErrorIs(t, err, policy.ErrInvalidInput)
}

// TestTokenValidator_Garbage 测试非法令牌字符串
func TestTokenValidator_Garbage(t *testing.T) {
	validator := auth.NewTokenValidator("checksheet-test", "test-secret")

	_, err := validator.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
