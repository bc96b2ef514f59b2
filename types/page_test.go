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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestDefaults(t *testing.T) {
	p := NewPageRequest(0, 0, nil, nil)
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, DefaultPageSize, p.GetPageSize())
	assert.Equal(t, 0, p.GetOffset())

	p = NewPageRequest(3, 20, NewQueryFilter("todo_repo_id = ?", 7), []string{"date DESC"})
	assert.Equal(t, 40, p.GetOffset())
	assert.Equal(t, "todo_repo_id = ?", p.GetFilter().Schema)
	assert.Equal(t, []interface{}{7}, p.GetFilter().Args)
	assert.Equal(t, []string{"date DESC"}, p.GetOrders())
}

func TestResponseMessage(t *testing.T) {
	assert.Equal(t, "Request Success", MessageSuccess.String())
	assert.Equal(t, "Create Successfully", MessageCreateSuccess.Desc())
	assert.Equal(t, "LOGOUT_SUCCESS", MessageLogoutSuccess.Name())
	assert.Equal(t, 3, MessageUpdateSuccess.Number())

	bogus := ResponseMessage(42)
	assert.False(t, bogus.IsValid())
	assert.Equal(t, IllegalValue, bogus.Number())
	assert.Equal(t, IllegalName, bogus.Name())
	assert.Equal(t, IllegalDesc, bogus.String())
}
