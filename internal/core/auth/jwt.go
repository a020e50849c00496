package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleClient = "client" // 前端：只能访问 token 里的工作区
	RoleAdmin  = "admin"
)

var ErrNoWorkspace = errors.New("token has no workspace")

// Claims wid 即工作区 ID，同时写进 sub
type Claims struct {
	Workspace string `json:"wid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func (j *JWTer) Issue(workspace, role string) (string, error) {
	if workspace == "" {
		return "", ErrNoWorkspace
	}
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Workspace: workspace,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   workspace,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	})
	return tok.SignedString(j.Secret)
}

// Parse 只接受 HS256、本服务签发、带过期时间且有工作区的 token
func (j *JWTer) Parse(raw string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return j.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if c.Workspace == "" {
		return nil, ErrNoWorkspace
	}
	return &c, nil
}
