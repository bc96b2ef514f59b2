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

package repository

import (
	"context"
	"time"

	"github.com/tomoncle/commit-today/model"
	"github.com/tomoncle/commit-today/types"
	"github.com/uptrace/bun"
)

// TodoRepoRepository persists todo repositories. Every lookup is scoped to the
// owning user.
type TodoRepoRepository struct {
	Repository[model.TodoRepo]
}

func NewTodoRepoRepository(db *bun.DB) *TodoRepoRepository {
	return &TodoRepoRepository{Repository: NewRepository[model.TodoRepo](db)}
}

func ownerFilter(userID int64) *types.QueryFilter {
	return types.NewQueryFilter("user_id = ?", userID)
}

// GetOwned returns repo id when it belongs to userID, else ErrRecordNotFound.
func (r *TodoRepoRepository) GetOwned(ctx context.Context, userID, id int64) (*model.TodoRepo, error) {
	return r.FindOne(ctx, types.NewQueryFilter("id = ? AND user_id = ?", id, userID))
}

// ListBeforeByOwner returns up to limit repos of userID below cursor, newest first.
func (r *TodoRepoRepository) ListBeforeByOwner(ctx context.Context, userID int64, cursor *int64, limit int) ([]*model.TodoRepo, error) {
	return r.ListBefore(ctx, ownerFilter(userID), cursor, limit)
}

// ListAfterByOwner returns up to limit repos of userID above cursor, oldest first.
func (r *TodoRepoRepository) ListAfterByOwner(ctx context.Context, userID int64, cursor int64, limit int) ([]*model.TodoRepo, error) {
	return r.ListAfter(ctx, ownerFilter(userID), cursor, limit)
}

// UpdateContent writes title and description.
func (r *TodoRepoRepository) UpdateContent(ctx context.Context, repo *model.TodoRepo) error {
	_, err := r.NewUpdate().
		Model(repo).
		Column("title", "description", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

// DeleteCascade removes a repo with its daily todos and tasks in one transaction.
func (r *TodoRepoRepository) DeleteCascade(ctx context.Context, id int64) error {
	return r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*model.DailyTodoTask)(nil)).Where("todo_repo_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*model.DailyTodo)(nil)).Where("todo_repo_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		return r.DeleteWithTx(ctx, &tx, id)
	})
}

// DailyTodoRepository persists daily todos, keyed by repo and date.
type DailyTodoRepository struct {
	Repository[model.DailyTodo]
}

func NewDailyTodoRepository(db *bun.DB) *DailyTodoRepository {
	return &DailyTodoRepository{Repository: NewRepository[model.DailyTodo](db)}
}

func dailyTodoFilter(repoID int64, date time.Time) *types.QueryFilter {
	return types.NewQueryFilter("todo_repo_id = ? AND date = ?", repoID, model.TruncateDate(date))
}

// Get returns the daily todo of repoID on date or ErrRecordNotFound.
func (r *DailyTodoRepository) Get(ctx context.Context, repoID int64, date time.Time) (*model.DailyTodo, error) {
	return r.FindOne(ctx, dailyTodoFilter(repoID, date))
}

// PageByRepo lists the daily todos of repoID, most recent date first.
func (r *DailyTodoRepository) PageByRepo(ctx context.Context, repoID int64, page, pageSize int) (*types.Pagination[model.DailyTodo], error) {
	return r.Page(ctx, types.NewPageRequest(page, pageSize,
		types.NewQueryFilter("todo_repo_id = ?", repoID),
		[]string{"date DESC"},
	))
}

// DeleteCascade removes the daily todo of repoID on date together with its tasks.
func (r *DailyTodoRepository) DeleteCascade(ctx context.Context, repoID int64, date time.Time) error {
	date = model.TruncateDate(date)
	return r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*model.DailyTodoTask)(nil)).
			Where("todo_repo_id = ? AND date = ?", repoID, date).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*model.DailyTodo)(nil)).
			Where("todo_repo_id = ? AND date = ?", repoID, date).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

// TaskRepository persists the tasks of daily todos.
type TaskRepository struct {
	Repository[model.DailyTodoTask]
}

func NewTaskRepository(db *bun.DB) *TaskRepository {
	return &TaskRepository{Repository: NewRepository[model.DailyTodoTask](db)}
}

// ListByDailyTodo returns the tasks of one daily todo in creation order.
func (r *TaskRepository) ListByDailyTodo(ctx context.Context, repoID int64, date time.Time) ([]*model.DailyTodoTask, error) {
	tasks := make([]*model.DailyTodoTask, 0)
	err := r.NewSelect().
		Model(&tasks).
		Where("todo_repo_id = ? AND date = ?", repoID, model.TruncateDate(date)).
		OrderExpr("id ASC").
		Scan(ctx)
	return tasks, err
}

// GetInDailyTodo returns task id when it belongs to the given daily todo.
func (r *TaskRepository) GetInDailyTodo(ctx context.Context, repoID int64, date time.Time, id int64) (*model.DailyTodoTask, error) {
	return r.FindOne(ctx, types.NewQueryFilter("id = ? AND todo_repo_id = ? AND date = ?", id, repoID, model.TruncateDate(date)))
}

// UpdateState writes content and completion.
func (r *TaskRepository) UpdateState(ctx context.Context, task *model.DailyTodoTask) error {
	_, err := r.NewUpdate().
		Model(task).
		Column("content", "is_completed", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}
