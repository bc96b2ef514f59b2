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

package model_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/commit-today/database"
	"github.com/tomoncle/commit-today/database/dbtest"
	"github.com/tomoncle/commit-today/model"
)

func TestParseAndTruncateDate(t *testing.T) {
	d, err := model.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = model.ParseDate("2023-02-29")
	assert.Error(t, err)
	_, err = model.ParseDate("29/02/2024")
	assert.Error(t, err)

	local := time.Date(2024, 5, 6, 23, 59, 0, 0, time.FixedZone("X", 3600))
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), model.TruncateDate(local))
}

func TestModelsAreRegisteredInDependencyOrder(t *testing.T) {
	var tables []string
	for _, m := range database.RegisteredModelInstances() {
		switch m.(type) {
		case *model.User:
			tables = append(tables, "users")
		case *model.TodoRepo:
			tables = append(tables, "todo_repos")
		case *model.DailyTodo:
			tables = append(tables, "daily_todos")
		case *model.DailyTodoTask:
			tables = append(tables, "daily_todo_tasks")
		}
	}
	assert.Equal(t, []string{"users", "todo_repos", "daily_todos", "daily_todo_tasks"}, tables)
}

func TestTimestampsHook(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	user := &model.User{Email: "stamp@example.com", Password: "x", Username: "stamp"}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)

	created := user.CreatedAt
	time.Sleep(2 * time.Millisecond)
	user.Username = "stamped"
	_, err = db.NewUpdate().Model(user).WherePK().Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, user.CreatedAt)
	assert.True(t, user.UpdatedAt.After(created))
}
