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

package model

import (
	"time"

	"github.com/tomoncle/commit-today/database"
	"github.com/uptrace/bun"
)

const (
	TodoRepoTitleMaxLen       = 50
	TodoRepoDescriptionMaxLen = 256
)

// TodoRepo is a user-owned collection of daily todos.
type TodoRepo struct {
	bun.BaseModel `bun:"table:todo_repos,alias:tr"`

	ID int64 `bun:"id,pk,autoincrement" json:"id"`
	Timestamps
	Title       string `bun:"title,type:varchar(50),notnull" json:"title"`
	Description string `bun:"description,type:varchar(256),notnull" json:"description"`
	UserID      int64  `bun:"user_id,notnull" json:"user_id"`
}

func (r *TodoRepo) GetID() int64 { return r.ID }

func (r *TodoRepo) Indexes() []database.ModelIndex {
	return []database.ModelIndex{{Name: "idx_todo_repos_user_id", Columns: []string{"user_id"}}}
}

// DailyTodo is the single entry of a repo for one calendar date.
type DailyTodo struct {
	bun.BaseModel `bun:"table:daily_todos,alias:dt"`

	TodoRepoID int64     `bun:"todo_repo_id,pk" json:"todo_repo_id"`
	Date       time.Time `bun:"date,pk,type:date" json:"date"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// DailyTodoTask is one line item of a daily todo.
type DailyTodoTask struct {
	bun.BaseModel `bun:"table:daily_todo_tasks,alias:dtt"`

	ID int64 `bun:"id,pk,autoincrement" json:"id"`
	Timestamps
	Content     string    `bun:"content,type:text,notnull" json:"content"`
	IsCompleted bool      `bun:"is_completed,notnull,default:false" json:"is_completed"`
	TodoRepoID  int64     `bun:"todo_repo_id,notnull" json:"todo_repo_id"`
	Date        time.Time `bun:"date,type:date,notnull" json:"date"`
}

func (t *DailyTodoTask) GetID() int64 { return t.ID }

func (t *DailyTodoTask) Indexes() []database.ModelIndex {
	return []database.ModelIndex{{Name: "idx_daily_todo_tasks_daily_todo", Columns: []string{"todo_repo_id", "date"}}}
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*TodoRepo)(nil), 20))
	database.RegisteredModel(database.NewModelAdapter((*DailyTodo)(nil), 30))
	database.RegisteredModel(database.NewModelAdapter((*DailyTodoTask)(nil), 40))
}
