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
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/commit-today/model"
	"github.com/tomoncle/commit-today/repository"
	"github.com/tomoncle/commit-today/types"
	"github.com/tomoncle/commit-today/utils"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// TaskUpdate holds the task fields to change; nil fields are left alone.
type TaskUpdate struct {
	Content     *string
	IsCompleted *bool
}

// DailyTodoDetail is a daily todo with its tasks.
type DailyTodoDetail struct {
	*model.DailyTodo
	Tasks []*model.DailyTodoTask `json:"tasks"`
}

// TodoService manages the todo hierarchy of a user. Every operation first
// resolves the repo owned by the caller, so foreign repos look missing.
type TodoService struct {
	repos   *repository.TodoRepoRepository
	dailies *repository.DailyTodoRepository
	tasks   *repository.TaskRepository
	taskSvc Service[model.DailyTodoTask]
	log     *utils.Logger
}

func NewTodoService(db *bun.DB) *TodoService {
	return &TodoService{
		repos:   repository.NewTodoRepoRepository(db),
		dailies: repository.NewDailyTodoRepository(db),
		tasks:   repository.NewTaskRepository(db),
		taskSvc: NewService[model.DailyTodoTask](db),
		log:     utils.NewLogger("TODO"),
	}
}

func validateRepoFields(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > model.TodoRepoTitleMaxLen {
		return fmt.Errorf("%w: title longer than %d characters", ErrInvalidInput, model.TodoRepoTitleMaxLen)
	}
	if utf8.RuneCountInString(description) > model.TodoRepoDescriptionMaxLen {
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalidInput, model.TodoRepoDescriptionMaxLen)
	}
	return nil
}

func (s *TodoService) CreateTodoRepo(ctx context.Context, userID int64, title, description string) (*model.TodoRepo, error) {
	if err := validateRepoFields(title, description); err != nil {
		return nil, err
	}
	repo := &model.TodoRepo{Title: title, Description: description, UserID: userID}
	if err := s.repos.Create(ctx, repo); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "repo_id": repo.ID}).Debug("todo repo created")
	return repo, nil
}

func (s *TodoService) GetTodoRepo(ctx context.Context, userID, repoID int64) (*model.TodoRepo, error) {
	repo, err := s.repos.GetOwned(ctx, userID, repoID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrTodoRepoNotFound, repoID)
	}
	return repo, err
}

func (s *TodoService) UpdateTodoRepo(ctx context.Context, userID, repoID int64, title, description string) (*model.TodoRepo, error) {
	if err := validateRepoFields(title, description); err != nil {
		return nil, err
	}
	repo, err := s.GetTodoRepo(ctx, userID, repoID)
	if err != nil {
		return nil, err
	}
	repo.Title = title
	repo.Description = description
	if err := s.repos.UpdateContent(ctx, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

// DeleteTodoRepo removes the repo with all its daily todos and tasks.
func (s *TodoService) DeleteTodoRepo(ctx context.Context, userID, repoID int64) error {
	if _, err := s.GetTodoRepo(ctx, userID, repoID); err != nil {
		return err
	}
	return s.repos.DeleteCascade(ctx, repoID)
}

// ListTodoRepos returns one cursor page of the user's repos, newest first.
// The neighbouring pages are fetched concurrently to fill in the paging info.
func (s *TodoService) ListTodoRepos(ctx context.Context, userID int64, req types.CursorRequest) (*types.CursorPage[*model.TodoRepo], error) {
	size := min(req.GetPageSize(), types.MaxPageSize)
	cursor := req.GetCursor()

	curr, err := s.repos.ListBeforeByOwner(ctx, userID, cursor, size)
	if err != nil {
		return nil, fmt.Errorf("list todo repos: %w", err)
	}
	pagination := types.NewCursorPagination(cursor, size, curr)

	var prev, next []*model.TodoRepo
	g, gctx := errgroup.WithContext(ctx)
	if cursor != nil {
		after := *cursor
		g.Go(func() error {
			var err error
			prev, err = s.repos.ListAfterByOwner(gctx, userID, after, size)
			return err
		})
	}
	if nextCursor := pagination.NextCursor(); nextCursor != nil {
		g.Go(func() error {
			var err error
			next, err = s.repos.ListBeforeByOwner(gctx, userID, nextCursor, size)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("look up adjacent pages: %w", err)
	}
	return pagination.Response(prev, next), nil
}

func (s *TodoService) CreateDailyTodo(ctx context.Context, userID, repoID int64, date time.Time) (*model.DailyTodo, error) {
	if _, err := s.GetTodoRepo(ctx, userID, repoID); err != nil {
		return nil, err
	}
	date = model.TruncateDate(date)
	if _, err := s.dailies.Get(ctx, repoID, date); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDailyTodoAlreadyExists, date.Format(model.DateLayout))
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, err
	}

	daily := &model.DailyTodo{TodoRepoID: repoID, Date: date, CreatedAt: time.Now().UTC()}
	if err := s.dailies.Create(ctx, daily); err != nil {
		if errors.Is(err, repository.ErrDuplicateRecord) {
			return nil, fmt.Errorf("%w: %s", ErrDailyTodoAlreadyExists, date.Format(model.DateLayout))
		}
		return nil, err
	}
	return daily, nil
}

func (s *TodoService) getDailyTodo(ctx context.Context, userID, repoID int64, date time.Time) (*model.DailyTodo, error) {
	if _, err := s.GetTodoRepo(ctx, userID, repoID); err != nil {
		return nil, err
	}
	daily, err := s.dailies.Get(ctx, repoID, date)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrDailyTodoNotFound, date.Format(model.DateLayout))
	}
	return daily, err
}

// GetDailyTodo returns the daily todo of date together with its tasks.
func (s *TodoService) GetDailyTodo(ctx context.Context, userID, repoID int64, date time.Time) (*DailyTodoDetail, error) {
	daily, err := s.getDailyTodo(ctx, userID, repoID, date)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByDailyTodo(ctx, repoID, daily.Date)
	if err != nil {
		return nil, err
	}
	return &DailyTodoDetail{DailyTodo: daily, Tasks: tasks}, nil
}

// ListDailyTodos pages through a repo's daily todos, latest date first.
func (s *TodoService) ListDailyTodos(ctx context.Context, userID, repoID int64, page, pageSize int) (*types.Pagination[model.DailyTodo], error) {
	if _, err := s.GetTodoRepo(ctx, userID, repoID); err != nil {
		return nil, err
	}
	return s.dailies.PageByRepo(ctx, repoID, page, min(pageSize, types.MaxPageSize))
}

func (s *TodoService) DeleteDailyTodo(ctx context.Context, userID, repoID int64, date time.Time) error {
	if _, err := s.GetTodoRepo(ctx, userID, repoID); err != nil {
		return err
	}
	err := s.dailies.DeleteCascade(ctx, repoID, date)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrDailyTodoNotFound, date.Format(model.DateLayout))
	}
	return err
}

func (s *TodoService) CreateTask(ctx context.Context, userID, repoID int64, date time.Time, content string) (*model.DailyTodoTask, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	daily, err := s.getDailyTodo(ctx, userID, repoID, date)
	if err != nil {
		return nil, err
	}
	task := &model.DailyTodoTask{TodoRepoID: repoID, Date: daily.Date, Content: content}
	if err := s.taskSvc.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TodoService) ListTasks(ctx context.Context, userID, repoID int64, date time.Time) ([]*model.DailyTodoTask, error) {
	daily, err := s.getDailyTodo(ctx, userID, repoID, date)
	if err != nil {
		return nil, err
	}
	return s.tasks.ListByDailyTodo(ctx, repoID, daily.Date)
}

func (s *TodoService) getTask(ctx context.Context, userID, repoID int64, date time.Time, taskID int64) (*model.DailyTodoTask, error) {
	daily, err := s.getDailyTodo(ctx, userID, repoID, date)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.GetInDailyTodo(ctx, repoID, daily.Date, taskID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrDailyTodoTaskNotFound, taskID)
	}
	return task, err
}

func (s *TodoService) UpdateTask(ctx context.Context, userID, repoID int64, date time.Time, taskID int64, upd TaskUpdate) (*model.DailyTodoTask, error) {
	if upd.Content != nil && strings.TrimSpace(*upd.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	task, err := s.getTask(ctx, userID, repoID, date, taskID)
	if err != nil {
		return nil, err
	}
	if upd.Content != nil {
		task.Content = *upd.Content
	}
	if upd.IsCompleted != nil {
		task.IsCompleted = *upd.IsCompleted
	}
	if err := s.tasks.UpdateState(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TodoService) DeleteTask(ctx context.Context, userID, repoID int64, date time.Time, taskID int64) error {
	task, err := s.getTask(ctx, userID, repoID, date, taskID)
	if err != nil {
		return err
	}
	return s.taskSvc.Delete(ctx, task.ID)
}
