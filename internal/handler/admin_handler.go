package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/taskstore"
)

// AdminHandler serves the admin view over every user's tasks.
type AdminHandler struct {
	store *taskstore.Store
}

func NewAdminHandler(store *taskstore.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

type adminQuery struct {
	Search   string `form:"search"`
	Priority string `form:"priority"`
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

// List godoc
// @Summary      List all tasks
// @Description  Search, filter and paginate every user's tasks
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        search    query     string  false  "Substring of title or description"
// @Param        priority  query     string  false  "Low, Medium, High or all"
// @Param        status    query     string  false  "Pending, In Progress, Completed or all"
// @Param        page      query     int     false  "Page, starting at 1"
// @Param        per_page  query     int     false  "Rows per page: 5, 10 or 20"
// @Success      200       {object}  taskstore.Page
// @Failure      400       {object}  ErrorResponse
// @Failure      403       {object}  ErrorResponse
// @Router       /admin/tasks [get]
func (h *AdminHandler) List(c *gin.Context) {
	var q adminQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	if q.Priority != "" && q.Priority != taskstore.FilterAll && !model.Priority(q.Priority).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}
	if q.Status != "" && q.Status != taskstore.FilterAll && !model.Status(q.Status).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	c.JSON(http.StatusOK, h.store.Query(taskstore.Filter{
		Search:   q.Search,
		Priority: q.Priority,
		Status:   q.Status,
		Page:     q.Page,
		PerPage:  q.PerPage,
	}))
}

// Summary godoc
// @Summary   Task counters
// @Tags      Admin
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  taskstore.Summary
// @Failure   403  {object}  ErrorResponse
// @Router    /admin/summary [get]
func (h *AdminHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Summarize())
}
