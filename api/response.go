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

	"github.com/gin-gonic/gin"
	"github.com/tomoncle/commit-today/types"
)

// Response is the envelope of every JSON body.
type Response struct {
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *AppError `json:"error,omitempty"`
}

// PagedResponse carries one cursor page.
type PagedResponse struct {
	Response
	Paging types.Paging `json:"paging"`
}

func respond(c *gin.Context, status int, msg types.ResponseMessage, data any) {
	c.JSON(status, Response{OK: true, Message: msg.String(), Data: data})
}

func okResponse(c *gin.Context, data any) {
	respond(c, http.StatusOK, types.MessageSuccess, data)
}

func created(c *gin.Context, data any) {
	respond(c, http.StatusCreated, types.MessageCreateSuccess, data)
}

func respondPage[T any](c *gin.Context, page *types.CursorPage[T]) {
	c.JSON(http.StatusOK, PagedResponse{
		Response: Response{OK: true, Message: types.MessageSuccess.String(), Data: page.Data},
		Paging:   page.Paging,
	})
}
