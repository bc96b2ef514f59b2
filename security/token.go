/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenRevoked   = errors.New("token revoked")
	ErrWrongTokenType = errors.New("wrong token type")
)

// TokenConfig configures signing and lifetimes of issued tokens.
type TokenConfig struct {
	Secret     string        `mapstructure:"secret"`
	Algorithm  string        `mapstructure:"algorithm"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		Algorithm:  "HS256",
		Issuer:     "commit-today",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// Subject is the identity embedded into tokens.
type Subject struct {
	UserID    int64
	Email     string
	Username  string
	FirstName string
	LastName  string
}

// Claims are the JWT claims of both token types. Profile fields are only set
// on access tokens.
type Claims struct {
	TokenType string `json:"type"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// TokenManager issues and verifies tokens. Revoked refresh token ids are kept
// in memory until the token would have expired anyway.
type TokenManager struct {
	cfg     TokenConfig
	method  jwt.SigningMethod
	key     []byte
	revoked *cache.Cache
	now     func() time.Time
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	def := DefaultTokenConfig()
	if cfg.Secret == "" {
		return nil, errors.New("token secret cannot be empty")
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = def.Algorithm
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = def.AccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = def.RefreshTTL
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", cfg.Algorithm)
	}
	return &TokenManager{
		cfg:     cfg,
		method:  method,
		key:     []byte(cfg.Secret),
		revoked: cache.New(cfg.RefreshTTL, 10*time.Minute),
		now:     time.Now,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.cfg.AccessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

// IssuePair signs a fresh access and refresh token for sub.
func (m *TokenManager) IssuePair(sub Subject) (*TokenPair, error) {
	now := m.now()
	accessExp := now.Add(m.cfg.AccessTTL)
	refreshExp := now.Add(m.cfg.RefreshTTL)

	access, err := m.sign(&Claims{
		TokenType:        TokenTypeAccess,
		Email:            sub.Email,
		Username:         sub.Username,
		FirstName:        sub.FirstName,
		LastName:         sub.LastName,
		RegisteredClaims: m.registered(sub.UserID, now, accessExp),
	})
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(&Claims{
		TokenType:        TokenTypeRefresh,
		RegisteredClaims: m.registered(sub.UserID, now, refreshExp),
	})
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *TokenManager) registered(userID int64, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    m.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func (m *TokenManager) sign(claims *Claims) (string, error) {
	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", claims.TokenType, err)
	}
	return signed, nil
}

func (m *TokenManager) parse(token, tokenType string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ParseAccess verifies an access token.
func (m *TokenManager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, TokenTypeAccess)
}

// ParseRefresh verifies a refresh token and rejects revoked ones.
func (m *TokenManager) ParseRefresh(token string) (*Claims, error) {
	claims, err := m.parse(token, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if _, revoked := m.revoked.Get(claims.ID); revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke blacklists a refresh token until its expiry.
func (m *TokenManager) Revoke(claims *Claims) {
	ttl, live := m.remaining(claims)
	if !live {
		return
	}
	m.revoked.Set(claims.ID, struct{}{}, ttl)
}

// Claim revokes a refresh token and fails with ErrTokenRevoked if it was
// already revoked, so a token can be exchanged at most once.
func (m *TokenManager) Claim(claims *Claims) error {
	ttl, live := m.remaining(claims)
	if !live {
		return ErrInvalidToken
	}
	if err := m.revoked.Add(claims.ID, struct{}{}, ttl); err != nil {
		return ErrTokenRevoked
	}
	return nil
}

func (m *TokenManager) remaining(claims *Claims) (time.Duration, bool) {
	if claims.ExpiresAt == nil {
		return cache.DefaultExpiration, true
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	return ttl, ttl > 0
}
