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

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tomoncle/commit-today/model"
	"github.com/tomoncle/commit-today/security"
	"github.com/tomoncle/commit-today/service"
	"github.com/tomoncle/commit-today/types"
)

type signUpIn struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Username  string `json:"username" binding:"required,max=50"`
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
}

type loginIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshIn struct {
	RefreshToken string `json:"refresh_token"`
}

type userOut struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserOut(u *model.User) userOut {
	return userOut{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

type loginOut struct {
	User  userOut             `json:"user"`
	Token *security.TokenPair `json:"token"`
}

type authHandler struct {
	svc     *service.AuthService
	cookies cookieWriter
}

func (h *authHandler) signUp(c *gin.Context) {
	var in signUpIn
	if err := c.ShouldBindJSON(&in); err != nil {
		HandleError(c, bindingError(err))
		return
	}
	user, err := h.svc.SignUp(c.Request.Context(), service.SignUpInput{
		Email:     in.Email,
		Password:  in.Password,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	created(c, newUserOut(user))
}

func (h *authHandler) login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		HandleError(c, bindingError(err))
		return
	}
	user, pair, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.cookies.setPair(c, pair)
	respond(c, http.StatusOK, types.MessageLoginSuccess, loginOut{User: newUserOut(user), Token: pair})
}

// refreshToken reads the refresh token cookie, then the JSON body.
func refreshToken(c *gin.Context) string {
	if token, err := c.Cookie(RefreshTokenCookie); err == nil && token != "" {
		return token
	}
	var in refreshIn
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&in)
	}
	return in.RefreshToken
}

func (h *authHandler) refresh(c *gin.Context) {
	pair, err := h.svc.Refresh(c.Request.Context(), refreshToken(c))
	if err != nil {
		h.cookies.clear(c)
		HandleError(c, err)
		return
	}
	h.cookies.setPair(c, pair)
	okResponse(c, pair)
}

func (h *authHandler) logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context(), refreshToken(c))
	h.cookies.clear(c)
	respond(c, http.StatusOK, types.MessageLogoutSuccess, nil)
}

func (h *authHandler) me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	out := newUserOut(user)
	if claims := currentClaims(c); claims != nil && claims.ExpiresAt != nil {
		c.Header("X-Token-Expires-At", claims.ExpiresAt.UTC().Format(time.RFC3339))
	}
	okResponse(c, out)
}
