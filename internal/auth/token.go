package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mautops/checksheet-gin/internal/policy"
)

// ActorClaims 身份令牌声明
// 引擎不做认证,只校验外部签发的令牌并信任其中的角色声明
type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenValidator 身份令牌验证器
type TokenValidator struct {
	issuer string
	secret []byte
}

// NewTokenValidator 创建身份令牌验证器
func NewTokenValidator(issuer string, secret string) *TokenValidator {
	return &TokenValidator{
		issuer: issuer,
		secret: []byte(secret),
	}
}

// Issuer 返回期望的签发方
func (v *TokenValidator) Issuer() string {
	return v.issuer
}

// ValidateToken 校验令牌并解析出调用者身份
func (v *TokenValidator) ValidateToken(tokenString string) (policy.Actor, error) {
	var claims ActorClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return policy.Actor{}, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return policy.Actor{}, errors.New("invalid token")
	}

	if claims.Issuer != v.issuer {
		return policy.Actor{}, errors.New("invalid issuer")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return policy.Actor{}, errors.New("token expired")
	}
	if claims.Subject == "" {
		return policy.Actor{}, errors.New("missing subject")
	}

	role, err := policy.ParseRole(claims.Role)
	if err != nil {
		return policy.Actor{}, fmt.Errorf("invalid role claim: %w", err)
	}

	return policy.Actor{UserID: claims.Subject, Role: role}, nil
}

// SignToken 为指定身份签发令牌
// 正式环境由外部身份系统签发,这里主要服务于本地联调和测试
func (v *TokenValidator) SignToken(actor policy.Actor, ttl time.Duration) (string, error) {
	if err := actor.Validate(); err != nil {
		return "", err
	}

	now := time.Now()
	claims := ActorClaims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
