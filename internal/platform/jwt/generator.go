// Package jwtmw はセッションIDを運ぶ署名付きトークンを発行・検証します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken は署名不正・期限切れ・形式不正のトークンに対して返されます。
var ErrInvalidToken = errors.New("invalid session token")

// issuer はトークンのissクレームです。
const issuer = "crop_yield"

// SessionTokens はセッションIDをHS256署名付きJWTとして発行・検証します。
type SessionTokens struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewSessionTokens は指定されたシークレットと有効期間でSessionTokensを生成します。
func NewSessionTokens(secret string, expiration time.Duration) *SessionTokens {
	return &SessionTokens{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// Issue はセッションIDをsubクレームに持つ署名済みトークンを生成します。
func (g *SessionTokens) Issue(sessionID string) (string, error) {
	if len(g.secret) == 0 {
		return "", errors.New("session secret is empty")
	}
	now := g.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse は署名と有効期限を検証し、セッションIDを返します。
// HS256以外のアルゴリズムは拒否します。
func (g *SessionTokens) Parse(tokenStr string) (string, error) {
	claims, err := g.parseClaims(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// NeedsRefresh は有効なトークンの残り有効期間が発行時の半分を下回っている場合にtrueを返します。
// 利用中のセッションはトークンを再発行することで期限が延長されます。
func (g *SessionTokens) NeedsRefresh(tokenStr string) bool {
	claims, err := g.parseClaims(tokenStr)
	if err != nil {
		return false
	}
	return claims.ExpiresAt.Time.Sub(g.now()) < g.expiration/2
}

func (g *SessionTokens) parseClaims(tokenStr string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &claims, nil
}
