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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tomoncle/commit-today/service"
	"github.com/tomoncle/commit-today/types"
)

// AppError is the error detail attached to a failed response.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func NewError(code int, message string, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

var errorStatus = []struct {
	target  error
	code    int
	message string
}{
	{service.ErrUserAlreadyExists, http.StatusBadRequest, "User Already Exists"},
	{service.ErrUserNotFound, http.StatusNotFound, "User Not Found"},
	{service.ErrPasswordNotMatch, http.StatusUnauthorized, "Password Not Match"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{service.ErrInvalidInput, http.StatusBadRequest, "Invalid Input"},
	{service.ErrTodoRepoNotFound, http.StatusNotFound, "Resource Not Found"},
	{service.ErrDailyTodoNotFound, http.StatusNotFound, "Resource Not Found"},
	{service.ErrDailyTodoTaskNotFound, http.StatusNotFound, "Resource Not Found"},
	{service.ErrDailyTodoAlreadyExists, http.StatusConflict, "Resource Already Exists"},
}

// HandleError maps err to a status code and writes the failure envelope.
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = classify(err)
	}
	if appErr.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(appErr.Code, Response{
		OK:      false,
		Message: types.MessageFail.String(),
		Error:   appErr,
	})
}

func classify(err error) *AppError {
	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			return NewError(e.code, e.message, err.Error())
		}
	}
	return NewError(http.StatusInternalServerError, "Internal Server Error", "")
}

// bindingError reports a request that failed to bind or validate.
func bindingError(err error) *AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s: failed on %s", fe.Field(), fe.Tag()))
		}
		return NewError(http.StatusUnprocessableEntity, "Validation Failed", strings.Join(fields, "; "))
	}
	return NewError(http.StatusUnprocessableEntity, "Validation Failed", err.Error())
}

// NotFoundHandler answers unknown routes.
func NotFoundHandler(c *gin.Context) {
	HandleError(c, NewError(http.StatusNotFound, "Resource Not Found", c.Request.URL.Path))
}
