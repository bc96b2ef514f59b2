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
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/commit-today/security"
	"github.com/tomoncle/commit-today/service"
	"github.com/tomoncle/commit-today/utils"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	ctxUserID = "user_id"
	ctxClaims = "claims"
)

// requestLogger writes one access log line per request. The field names are
// the ones the JSON formatter promotes to the top level.
func requestLogger(l *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := l.WithFields(logrus.Fields{
			"req_uri":      c.Request.RequestURI,
			"req_method":   c.Request.Method,
			"client_ip":    c.ClientIP(),
			"status_code":  c.Writer.Status(),
			"latency_time": time.Since(start).String(),
		})
		switch {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.String())
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		default:
			entry.Info("request handled")
		}
	}
}

// bearerToken reads the Authorization header, falling back to the access
// token cookie.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	if token, err := c.Cookie(AccessTokenCookie); err == nil {
		return token
	}
	return ""
}

// RequireAuth rejects requests without a valid access token and stores the
// caller's id in the context.
func RequireAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, claims, err := auth.Authenticate(bearerToken(c))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			HandleError(c, err)
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

func currentClaims(c *gin.Context) *security.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		claims, _ := v.(*security.Claims)
		return claims
	}
	return nil
}

type cookieWriter struct {
	secure bool
}

func (w cookieWriter) set(c *gin.Context, name, value string, expires time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (w cookieWriter) setPair(c *gin.Context, pair *security.TokenPair) {
	w.set(c, AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt)
	w.set(c, RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt)
}

func (w cookieWriter) clear(c *gin.Context) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   w.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
