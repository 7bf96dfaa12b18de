package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/taskstore"
)

// TaskHandler serves the home view: the viewer's own tasks.
type TaskHandler struct {
	store      *taskstore.Store
	assignees  []string
	dateLayout string
	now        func() time.Time
}

func NewTaskHandler(store *taskstore.Store, assignees []string, dateLayout string) *TaskHandler {
	if len(assignees) == 0 {
		assignees = model.DefaultAssignees
	}
	return &TaskHandler{
		store:      store,
		assignees:  assignees,
		dateLayout: dateLayout,
		now:        time.Now,
	}
}

// TaskRequest is the body of create and update. Empty fields take the
// defaults on create and keep the current value on update, except
// description, which is always replaced.
type TaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	AssignTo    string `json:"assignTo"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// List godoc
// @Summary   List the viewer's tasks
// @Tags      Tasks
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}   model.Task
// @Failure   401  {object}  ErrorResponse
// @Failure   503  {object}  ErrorResponse
// @Router    /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.store.Owned(model.OwnerOf(s.State().Identity)))
}

// Create godoc
// @Summary   Create a task
// @Tags      Tasks
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     request  body      TaskRequest  true  "Task"
// @Success   201      {object}  model.Task
// @Failure   400      {object}  ErrorResponse
// @Router    /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task := model.Task{
		AssignTo: model.DefaultAssignee,
		Priority: model.PriorityMedium,
		Status:   model.StatusPending,
		Created:  h.now().Format(h.dateLayout),
		UserID:   model.OwnerOf(s.State().Identity),
	}
	if msg := h.apply(&task, req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	task = h.store.Add(task)
	glog.V(1).Infof("task %s created by %s", task.ID, task.UserID)
	c.JSON(http.StatusCreated, task)
}

// Update godoc
// @Summary      Update one of the viewer's tasks
// @Description  A task that does not exist or belongs to someone else is left alone and answered with 204
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string       true  "Task ID"
// @Param        request  body      TaskRequest  true  "Task"
// @Success      200      {object}  model.Task
// @Success      204
// @Failure      400      {object}  ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	current, found := h.store.Get(id)
	if !found || !current.OwnedBy(model.OwnerOf(s.State().Identity)) {
		c.Status(http.StatusNoContent)
		return
	}

	if msg := h.apply(&current, req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	updated, found := h.store.Update(id, current)
	if !found {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete godoc
// @Summary      Delete one of the viewer's tasks
// @Description  Always 204; tasks that do not exist or belong to someone else are left alone
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id  path  string  true  "Task ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	if task, found := h.store.Get(id); found && task.OwnedBy(model.OwnerOf(s.State().Identity)) {
		h.store.Delete(id)
	}
	c.Status(http.StatusNoContent)
}

// apply copies the non-empty request fields onto task and returns a
// validation message, or "" when the result is valid.
func (h *TaskHandler) apply(task *model.Task, req TaskRequest) string {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "Title is required"
	}
	task.Title = title
	task.Description = req.Description

	if req.AssignTo != "" {
		if !h.validAssignee(req.AssignTo) {
			return "Invalid assignee"
		}
		task.AssignTo = req.AssignTo
	}
	if req.Priority != "" {
		p := model.Priority(req.Priority)
		if !p.Valid() {
			return "Invalid priority"
		}
		task.Priority = p
	}
	if req.Status != "" {
		st := model.Status(req.Status)
		if !st.Valid() {
			return "Invalid status"
		}
		task.Status = st
	}
	return ""
}

func (h *TaskHandler) validAssignee(name string) bool {
	for _, a := range h.assignees {
		if a == name {
			return true
		}
	}
	return false
}
