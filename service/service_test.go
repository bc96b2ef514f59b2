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

package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/commit-today/database/dbtest"
	"github.com/tomoncle/commit-today/model"
	"github.com/tomoncle/commit-today/security"
	"github.com/tomoncle/commit-today/service"
	"github.com/tomoncle/commit-today/types"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	cfg := security.DefaultTokenConfig()
	cfg.Secret = "service-test"
	tokens, err := security.NewTokenManager(cfg)
	require.NoError(t, err)
	return service.NewAuthService(dbtest.Open(t), security.NewPasswordHasher(bcrypt.MinCost), tokens)
}

func signUpInput(email string) service.SignUpInput {
	return service.SignUpInput{Email: email, Password: "pw", Username: "user", FirstName: "F", LastName: "L"}
}

func TestSignUpAndLogin(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	user, err := auth.SignUp(ctx, signUpInput("Someone@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", user.Email)
	assert.NotEqual(t, "pw", user.Password)

	_, err = auth.SignUp(ctx, signUpInput("someone@example.com"))
	assert.ErrorIs(t, err, service.ErrUserAlreadyExists)

	_, _, err = auth.Login(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	_, _, err = auth.Login(ctx, "someone@example.com", "bad")
	assert.ErrorIs(t, err, service.ErrPasswordNotMatch)

	got, pair, err := auth.Login(ctx, "someone@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	id, claims, err := auth.Authenticate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, "user", claims.Username)

	me, err := auth.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", me.Email)
	_, err = auth.Me(ctx, 999)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()
	_, err := auth.SignUp(ctx, signUpInput("r@example.com"))
	require.NoError(t, err)
	_, pair, err := auth.Login(ctx, "r@example.com", "pw")
	require.NoError(t, err)

	rotated, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, err = auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	auth.Logout(ctx, rotated.RefreshToken)
	_, err = auth.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	auth.Logout(ctx, "garbage")
	_, _, err = auth.Authenticate(rotated.RefreshToken)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
	_, _, err = auth.Authenticate("")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestConcurrentRefreshSucceedsOnce(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()
	_, err := auth.SignUp(ctx, signUpInput("race@example.com"))
	require.NoError(t, err)
	_, pair, err := auth.Login(ctx, "race@example.com", "pw")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var issued []*security.TokenPair
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rotated, err := auth.Refresh(ctx, pair.RefreshToken)
			if err != nil {
				assert.ErrorIs(t, err, service.ErrUnauthorized)
				return
			}
			mu.Lock()
			issued = append(issued, rotated)
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, issued, 1)

	_, err = auth.Refresh(ctx, issued[0].RefreshToken)
	assert.NoError(t, err)
}

func seedTodoRepos(t *testing.T, svc *service.TodoService, userID int64, n int) []*model.TodoRepo {
	t.Helper()
	repos := make([]*model.TodoRepo, 0, n)
	for i := 0; i < n; i++ {
		repo, err := svc.CreateTodoRepo(context.Background(), userID, fmt.Sprintf("title-%d", i), "description")
		require.NoError(t, err)
		repos = append(repos, repo)
	}
	return repos
}

func pageIDs(page *types.CursorPage[*model.TodoRepo]) []int64 {
	ids := make([]int64, 0, len(page.Data))
	for _, r := range page.Data {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestListTodoReposPagination(t *testing.T) {
	svc := service.NewTodoService(dbtest.Open(t))
	ctx := context.Background()
	seedTodoRepos(t, svc, 1, 20)

	first, err := svc.ListTodoRepos(ctx, 1, types.CursorRequest{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, first.Data, 10)
	assert.Equal(t, int64(20), first.Data[0].ID)
	assert.Equal(t, int64(11), first.Data[9].ID)
	assert.Nil(t, first.Paging.Cursors.Prev)
	require.NotNil(t, first.Paging.Cursors.Next)
	assert.Equal(t, int64(11), *first.Paging.Cursors.Next)
	assert.False(t, first.Paging.HasPrev)
	assert.True(t, first.Paging.HasNext)

	second, err := svc.ListTodoRepos(ctx, 1, types.CursorRequest{Cursor: first.Paging.Cursors.Next, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, second.Data, 10)
	assert.Equal(t, int64(10), second.Data[0].ID)
	assert.Equal(t, int64(1), second.Data[9].ID)
	assert.Nil(t, second.Paging.Cursors.Prev)
	assert.Nil(t, second.Paging.Cursors.Next)
	assert.True(t, second.Paging.HasPrev)
	assert.False(t, second.Paging.HasNext)

	back, err := svc.ListTodoRepos(ctx, 1, types.CursorRequest{Cursor: second.Paging.Cursors.Prev, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, pageIDs(first), pageIDs(back))
	assert.Equal(t, first.Paging, back.Paging)
}

func TestListTodoReposRoundTripInTheMiddle(t *testing.T) {
	svc := service.NewTodoService(dbtest.Open(t))
	ctx := context.Background()
	seedTodoRepos(t, svc, 1, 30)
	seedTodoRepos(t, svc, 2, 5)

	first, err := svc.ListTodoRepos(ctx, 1, types.CursorRequest{PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(30), first.Data[0].ID)

	second, err := svc.ListTodoRepos(ctx, 1, types.CursorRequest{Cursor: first.Paging.Cursors.Next, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(20), second.Data[0].ID)
	assert.Nil(t, second.Paging.Cursors.Prev)
	assert.True(t, second.Paging.HasPrev)
	assert.True(t, second.Paging.HasNext)

	third, err := svc.ListTodoRepos(ctx, 1, types.CursorRequest{Cursor: second.Paging.Cursors.Next, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(10), third.Data[0].ID)
	require.NotNil(t, third.Paging.Cursors.Prev)
	assert.Equal(t, int64(21), *third.Paging.Cursors.Prev)
	assert.False(t, third.Paging.HasNext)

	back, err := svc.ListTodoRepos(ctx, 1, types.CursorRequest{Cursor: third.Paging.Cursors.Prev, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, pageIDs(second), pageIDs(back))
}

func TestListTodoReposEmptyAndDefaults(t *testing.T) {
	svc := service.NewTodoService(dbtest.Open(t))
	ctx := context.Background()

	empty, err := svc.ListTodoRepos(ctx, 1, types.CursorRequest{})
	require.NoError(t, err)
	assert.Empty(t, empty.Data)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, types.Paging{}, empty.Paging)

	seedTodoRepos(t, svc, 1, 12)
	page, err := svc.ListTodoRepos(ctx, 1, types.CursorRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Data, types.DefaultPageSize)
}

func TestTodoRepoCrud(t *testing.T) {
	svc := service.NewTodoService(dbtest.Open(t))
	ctx := context.Background()

	_, err := svc.CreateTodoRepo(ctx, 1, strings.Repeat("x", 51), "")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = svc.CreateTodoRepo(ctx, 1, "ok", strings.Repeat("x", 257))
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	repo, err := svc.CreateTodoRepo(ctx, 1, "title", "description")
	require.NoError(t, err)
	assert.Equal(t, int64(1), repo.UserID)

	_, err = svc.GetTodoRepo(ctx, 2, repo.ID)
	assert.ErrorIs(t, err, service.ErrTodoRepoNotFound)

	before := repo.UpdatedAt
	time.Sleep(5 * time.Millisecond)
	updated, err := svc.UpdateTodoRepo(ctx, 1, repo.ID, "new title", "new description")
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.True(t, updated.UpdatedAt.After(before))

	_, err = svc.UpdateTodoRepo(ctx, 1, 9999, "t", "d")
	assert.ErrorIs(t, err, service.ErrTodoRepoNotFound)

	assert.ErrorIs(t, svc.DeleteTodoRepo(ctx, 2, repo.ID), service.ErrTodoRepoNotFound)
	require.NoError(t, svc.DeleteTodoRepo(ctx, 1, repo.ID))
	_, err = svc.GetTodoRepo(ctx, 1, repo.ID)
	assert.ErrorIs(t, err, service.ErrTodoRepoNotFound)
}

func TestDailyTodosAndTasks(t *testing.T) {
	svc := service.NewTodoService(dbtest.Open(t))
	ctx := context.Background()
	repo, err := svc.CreateTodoRepo(ctx, 1, "title", "description")
	require.NoError(t, err)
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	_, err = svc.CreateDailyTodo(ctx, 2, repo.ID, day)
	assert.ErrorIs(t, err, service.ErrTodoRepoNotFound)

	daily, err := svc.CreateDailyTodo(ctx, 1, repo.ID, day.Add(13*time.Hour))
	require.NoError(t, err)
	assert.True(t, daily.Date.Equal(day))
	_, err = svc.CreateDailyTodo(ctx, 1, repo.ID, day)
	assert.ErrorIs(t, err, service.ErrDailyTodoAlreadyExists)

	_, err = svc.CreateTask(ctx, 1, repo.ID, day.AddDate(0, 0, 1), "x")
	assert.ErrorIs(t, err, service.ErrDailyTodoNotFound)
	_, err = svc.CreateTask(ctx, 1, repo.ID, day, "  ")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	task, err := svc.CreateTask(ctx, 1, repo.ID, day, "write tests")
	require.NoError(t, err)
	assert.False(t, task.IsCompleted)

	done := true
	updated, err := svc.UpdateTask(ctx, 1, repo.ID, day, task.ID, service.TaskUpdate{IsCompleted: &done})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "write tests", updated.Content)

	_, err = svc.UpdateTask(ctx, 1, repo.ID, day, 999, service.TaskUpdate{IsCompleted: &done})
	assert.ErrorIs(t, err, service.ErrDailyTodoTaskNotFound)

	detail, err := svc.GetDailyTodo(ctx, 1, repo.ID, day)
	require.NoError(t, err)
	require.Len(t, detail.Tasks, 1)
	assert.True(t, detail.Tasks[0].IsCompleted)

	page, err := svc.ListDailyTodos(ctx, 1, repo.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	require.NoError(t, svc.DeleteTask(ctx, 1, repo.ID, day, task.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, 1, repo.ID, day, task.ID), service.ErrDailyTodoTaskNotFound)

	tasks, err := svc.ListTasks(ctx, 1, repo.ID, day)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.NoError(t, svc.DeleteDailyTodo(ctx, 1, repo.ID, day))
	assert.ErrorIs(t, svc.DeleteDailyTodo(ctx, 1, repo.ID, day), service.ErrDailyTodoNotFound)
}
