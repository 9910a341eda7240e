package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/literattus/literattus/internal/scheduler"
	"github.com/literattus/literattus/internal/tasks"
)

// TasksController handles task queue management endpoints. Admin-only.
type TasksController struct {
	client *tasks.Client
	sched  *scheduler.Scheduler
}

func NewTasksController(client *tasks.Client, sched *scheduler.Scheduler) *TasksController {
	return &TasksController{client: client, sched: sched}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/admin/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "refresh_book",
			Description: "Refresh one book's attributes from the catalog",
			Queue:       "refresh_book",
		},
		{
			Type:        "refresh_all_books",
			Description: "Refresh every stored book from the catalog",
			Queue:       "refresh_all_books",
		},
		{
			Type:        "prune_audit_log",
			Description: "Delete audit entries past the retention window",
			Queue:       "prune_audit_log",
		},
	}
	c.JSON(http.StatusOK, gin.H{"task_types": types})
}

// GetSchedule handles GET /api/admin/tasks/schedule
// Reports whether the cron loop is running and when jobs fire next.
func (tc *TasksController) GetSchedule(c *gin.Context) {
	if tc.sched == nil {
		c.JSON(http.StatusOK, gin.H{"running": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"running":   tc.sched.IsRunning(),
		"next_runs": tc.sched.NextRunTimes(),
	})
}

// GetTaskStatus handles GET /api/admin/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// BookID is required for the refresh_book task
	BookID string `json:"book_id,omitempty"`
	// RetentionDays overrides the default window for prune_audit_log
	RetentionDays int `json:"retention_days,omitempty"`
}

// RunTask handles POST /api/admin/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}

	var task backlite.Task
	switch taskType {
	case "refresh_book":
		if req.BookID == "" {
			respondBadRequest(c, "book_id is required for refresh_book task")
			return
		}
		task = tasks.RefreshBookTask{BookID: req.BookID}

	case "refresh_all_books":
		task = tasks.RefreshAllBooksTask{}

	case "prune_audit_log":
		task = tasks.PruneAuditLogTask{RetentionDays: req.RetentionDays}

	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	ids, err := tc.client.Add(task).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue task")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": firstOrEmpty(ids),
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
