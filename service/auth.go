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

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/commit-today/model"
	"github.com/tomoncle/commit-today/repository"
	"github.com/tomoncle/commit-today/security"
	"github.com/tomoncle/commit-today/utils"
	"github.com/uptrace/bun"
)

// SignUpInput carries the fields of a new account.
type SignUpInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
}

// AuthService registers users and manages their token pairs.
type AuthService struct {
	users  *repository.UserRepository
	lookup Service[model.User]
	hasher *security.PasswordHasher
	tokens *security.TokenManager
	log    *utils.Logger
}

func NewAuthService(db *bun.DB, hasher *security.PasswordHasher, tokens *security.TokenManager) *AuthService {
	return &AuthService{
		users:  repository.NewUserRepository(db),
		lookup: NewService[model.User](db),
		hasher: hasher,
		tokens: tokens,
		log:    utils.NewLogger("AUTH"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account. The email must not be registered yet.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserAlreadyExists, email)
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:     email,
		Password:  hashed,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			return nil, fmt.Errorf("%w: %s", ErrUserAlreadyExists, email)
		}
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": email}).Info("user signed up")
	return user, nil
}

// Login checks credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, *security.TokenPair, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	if err != nil {
		return nil, nil, err
	}
	if !s.hasher.Verify(user.Password, password) {
		return nil, nil, ErrPasswordNotMatch
	}
	pair, err := s.tokens.IssuePair(subjectOf(user))
	if err != nil {
		return nil, nil, err
	}
	s.log.WithField("user_id", user.ID).Info("user logged in")
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair
// is issued for its user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*security.TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err := s.tokens.Claim(claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	user, err := s.lookup.Get(ctx, userID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user gone", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return s.tokens.IssuePair(subjectOf(user))
}

// Logout revokes the refresh token. Invalid or missing tokens are ignored.
func (s *AuthService) Logout(_ context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return
	}
	s.tokens.Revoke(claims)
	s.log.WithField("user_id", claims.Subject).Info("user logged out")
}

// Authenticate verifies an access token and returns the user id it carries.
func (s *AuthService) Authenticate(accessToken string) (int64, *security.Claims, error) {
	if accessToken == "" {
		return 0, nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return userID, claims, nil
}

// Me returns the account of userID.
func (s *AuthService) Me(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.lookup.Get(ctx, userID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func subjectOf(u *model.User) security.Subject {
	return security.Subject{
		UserID:    u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
