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
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tomoncle/commit-today/model"
	"github.com/tomoncle/commit-today/service"
	"github.com/tomoncle/commit-today/types"
)

type todoRepoIn struct {
	Title       string `json:"title" binding:"required,max=50"`
	Description string `json:"description" binding:"max=256"`
}

type dailyTodoIn struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}

type taskIn struct {
	Content string `json:"content" binding:"required"`
}

type taskPatchIn struct {
	Content     *string `json:"content" binding:"omitempty,min=1"`
	IsCompleted *bool   `json:"is_completed"`
}

type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type taskOut struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Content     string    `json:"content"`
	IsCompleted bool      `json:"is_completed"`
	TodoRepoID  int64     `json:"todo_repo_id"`
	Date        string    `json:"date"`
}

func newTaskOut(t *model.DailyTodoTask) *taskOut {
	return &taskOut{
		ID:          t.ID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Content:     t.Content,
		IsCompleted: t.IsCompleted,
		TodoRepoID:  t.TodoRepoID,
		Date:        t.Date.Format(model.DateLayout),
	}
}

func newTaskOuts(tasks []*model.DailyTodoTask) []*taskOut {
	out := make([]*taskOut, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskOut(t))
	}
	return out
}

type dailyTodoOut struct {
	TodoRepoID int64      `json:"todo_repo_id"`
	Date       string     `json:"date"`
	CreatedAt  time.Time  `json:"created_at"`
	Tasks      []*taskOut `json:"tasks,omitempty"`
}

func newDailyTodoOut(d *model.DailyTodo) *dailyTodoOut {
	return &dailyTodoOut{
		TodoRepoID: d.TodoRepoID,
		Date:       d.Date.Format(model.DateLayout),
		CreatedAt:  d.CreatedAt,
	}
}

type todoHandler struct {
	svc *service.TodoService
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		HandleError(c, NewError(http.StatusBadRequest, "Invalid Path Parameter", name+"="+c.Param(name)))
		return 0, false
	}
	return id, true
}

func pathDate(c *gin.Context) (time.Time, bool) {
	date, err := model.ParseDate(c.Param("date"))
	if err != nil {
		HandleError(c, NewError(http.StatusBadRequest, "Invalid Path Parameter", "date must be YYYY-MM-DD"))
		return time.Time{}, false
	}
	return date, true
}

// dailyPath resolves repo_id and date of a daily todo route.
func dailyPath(c *gin.Context) (int64, time.Time, bool) {
	repoID, valid := pathID(c, "repo_id")
	if !valid {
		return 0, time.Time{}, false
	}
	date, valid := pathDate(c)
	return repoID, date, valid
}

func (h *todoHandler) createRepo(c *gin.Context) {
	var in todoRepoIn
	if err := c.ShouldBindJSON(&in); err != nil {
		HandleError(c, bindingError(err))
		return
	}
	repo, err := h.svc.CreateTodoRepo(c.Request.Context(), currentUserID(c), in.Title, in.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	created(c, repo)
}

func (h *todoHandler) listRepos(c *gin.Context) {
	var req types.CursorRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleError(c, bindingError(err))
		return
	}
	page, err := h.svc.ListTodoRepos(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	respondPage(c, page)
}

func (h *todoHandler) getRepo(c *gin.Context) {
	repoID, valid := pathID(c, "repo_id")
	if !valid {
		return
	}
	repo, err := h.svc.GetTodoRepo(c.Request.Context(), currentUserID(c), repoID)
	if err != nil {
		HandleError(c, err)
		return
	}
	okResponse(c, repo)
}

func (h *todoHandler) updateRepo(c *gin.Context) {
	repoID, valid := pathID(c, "repo_id")
	if !valid {
		return
	}
	var in todoRepoIn
	if err := c.ShouldBindJSON(&in); err != nil {
		HandleError(c, bindingError(err))
		return
	}
	repo, err := h.svc.UpdateTodoRepo(c.Request.Context(), currentUserID(c), repoID, in.Title, in.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, types.MessageUpdateSuccess, repo)
}

func (h *todoHandler) deleteRepo(c *gin.Context) {
	repoID, valid := pathID(c, "repo_id")
	if !valid {
		return
	}
	if err := h.svc.DeleteTodoRepo(c.Request.Context(), currentUserID(c), repoID); err != nil {
		HandleError(c, err)
		return
	}
	okResponse(c, nil)
}

func (h *todoHandler) createDailyTodo(c *gin.Context) {
	repoID, valid := pathID(c, "repo_id")
	if !valid {
		return
	}
	var in dailyTodoIn
	if err := c.ShouldBindJSON(&in); err != nil {
		HandleError(c, bindingError(err))
		return
	}
	date, err := model.ParseDate(in.Date)
	if err != nil {
		HandleError(c, bindingError(err))
		return
	}
	daily, err := h.svc.CreateDailyTodo(c.Request.Context(), currentUserID(c), repoID, date)
	if err != nil {
		HandleError(c, err)
		return
	}
	created(c, newDailyTodoOut(daily))
}

func (h *todoHandler) listDailyTodos(c *gin.Context) {
	repoID, valid := pathID(c, "repo_id")
	if !valid {
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleError(c, bindingError(err))
		return
	}
	page, err := h.svc.ListDailyTodos(c.Request.Context(), currentUserID(c), repoID, q.Page, q.PageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	out := types.NewDefaultPagination[dailyTodoOut](page.Page, page.PageSize)
	out.Total = page.Total
	for _, d := range page.Items {
		out.Items = append(out.Items, newDailyTodoOut(d))
	}
	okResponse(c, out)
}

func (h *todoHandler) getDailyTodo(c *gin.Context) {
	repoID, date, valid := dailyPath(c)
	if !valid {
		return
	}
	detail, err := h.svc.GetDailyTodo(c.Request.Context(), currentUserID(c), repoID, date)
	if err != nil {
		HandleError(c, err)
		return
	}
	out := newDailyTodoOut(detail.DailyTodo)
	out.Tasks = newTaskOuts(detail.Tasks)
	okResponse(c, out)
}

func (h *todoHandler) deleteDailyTodo(c *gin.Context) {
	repoID, date, valid := dailyPath(c)
	if !valid {
		return
	}
	if err := h.svc.DeleteDailyTodo(c.Request.Context(), currentUserID(c), repoID, date); err != nil {
		HandleError(c, err)
		return
	}
	okResponse(c, nil)
}

func (h *todoHandler) createTask(c *gin.Context) {
	repoID, date, valid := dailyPath(c)
	if !valid {
		return
	}
	var in taskIn
	if err := c.ShouldBindJSON(&in); err != nil {
		HandleError(c, bindingError(err))
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), currentUserID(c), repoID, date, in.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	created(c, newTaskOut(task))
}

func (h *todoHandler) listTasks(c *gin.Context) {
	repoID, date, valid := dailyPath(c)
	if !valid {
		return
	}
	tasks, err := h.svc.ListTasks(c.Request.Context(), currentUserID(c), repoID, date)
	if err != nil {
		HandleError(c, err)
		return
	}
	okResponse(c, newTaskOuts(tasks))
}

func (h *todoHandler) updateTask(c *gin.Context) {
	repoID, date, valid := dailyPath(c)
	if !valid {
		return
	}
	taskID, valid := pathID(c, "task_id")
	if !valid {
		return
	}
	var in taskPatchIn
	if err := c.ShouldBindJSON(&in); err != nil {
		HandleError(c, bindingError(err))
		return
	}
	task, err := h.svc.UpdateTask(c.Request.Context(), currentUserID(c), repoID, date, taskID,
		service.TaskUpdate{Content: in.Content, IsCompleted: in.IsCompleted})
	if err != nil {
		HandleError(c, err)
		return
	}
	respond(c, http.StatusOK, types.MessageUpdateSuccess, newTaskOut(task))
}

func (h *todoHandler) deleteTask(c *gin.Context) {
	repoID, date, valid := dailyPath(c)
	if !valid {
		return
	}
	taskID, valid := pathID(c, "task_id")
	if !valid {
		return
	}
	if err := h.svc.DeleteTask(c.Request.Context(), currentUserID(c), repoID, date, taskID); err != nil {
		HandleError(c, err)
		return
	}
	okResponse(c, nil)
}
