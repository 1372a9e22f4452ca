package jwts

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleBanned = "banned"
)

var (
	ErrTokenInvalid   = errors.New("token not valid")
	ErrTokenNotAccess = errors.New("token type is not access")
)

// CustomClaims 令牌载荷，签发方在外部；本服务只做解析校验
type CustomClaims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// GetToken 使用 HS512 签发令牌（测试和内部工具使用）
func GetToken(userID int64, role string, tokenType string, expire time.Duration, secret string) (string, error) {
	claims := &CustomClaims{
		UserID: userID,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken 解析并校验 access 令牌，返回 userID 和角色
func ParseToken(token, secret string) (int64, string, error) {
	claims := &CustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", err
	}
	if !parsed.Valid {
		return 0, "", ErrTokenInvalid
	}
	if claims.Type != TokenTypeAccess {
		return 0, "", ErrTokenNotAccess
	}
	return claims.UserID, claims.Role, nil
}
