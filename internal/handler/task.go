package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/Payphone-Digital/taskflow/internal/dto"
	"github.com/Payphone-Digital/taskflow/internal/middleware"
	"github.com/Payphone-Digital/taskflow/internal/service"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// List returns the caller's tasks, filtered and paginated
func (h *TaskHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ListTasks")

	identity, ok := h.identity(c)
	if !ok {
		return
	}

	query, problems := parseTaskQuery(c)
	if len(problems) > 0 {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(strings.Join(problems, ", ")))
		return
	}

	response, err := h.taskService.List(ctx, identity.UserID, query)
	if err != nil {
		respondError(c, ctx, err, constants.MsgFetchTasksFailed)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *TaskHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetTask")

	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	response, err := h.taskService.Get(ctx, identity.UserID, id)
	if err != nil {
		respondError(c, ctx, err, constants.MsgFetchTaskFailed)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *TaskHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "CreateTask")

	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, ctx, err)
		return
	}

	response, err := h.taskService.Create(ctx, identity.UserID, &req)
	if err != nil {
		respondError(c, ctx, err, constants.MsgCreateTaskFailed)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *TaskHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateTask")

	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, ctx, err)
		return
	}

	response, err := h.taskService.Update(ctx, identity.UserID, id, &req)
	if err != nil {
		respondError(c, ctx, err, constants.MsgUpdateTaskFailed)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "DeleteTask")

	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(ctx, identity.UserID, id); err != nil {
		respondError(c, ctx, err, constants.MsgDeleteTaskFailed)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgTaskDeleted))
}

func (h *TaskHandler) Toggle(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ToggleTask")

	identity, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := taskID(c)
	if !ok {
		return
	}

	response, err := h.taskService.Toggle(ctx, identity.UserID, id)
	if err != nil {
		respondError(c, ctx, err, constants.MsgToggleTaskFailed)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *TaskHandler) identity(c *gin.Context) (ctxutil.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAccessTokenMissing))
	}
	return identity, ok
}

// taskID validates the :id path parameter as a UUID
func taskID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgInvalidTaskID))
		return "", false
	}
	return id, true
}

// parseTaskQuery reads page, limit, status and search. Every invalid parameter
// contributes one message.
func parseTaskQuery(c *gin.Context) (dto.TaskQuery, []string) {
	query := dto.TaskQuery{
		Page:   constants.DefaultPage,
		Limit:  constants.DefaultLimit,
		Status: c.Query(constants.QueryParamStatus),
		Search: strings.TrimSpace(c.Query(constants.QueryParamSearch)),
	}
	var problems []string

	if raw, ok := c.GetQuery(constants.QueryParamPage); ok {
		page, err := strconv.Atoi(raw)
		if err != nil || page < constants.MinPage {
			problems = append(problems, constants.MsgInvalidPage)
		}
		query.Page = page
	}

	if raw, ok := c.GetQuery(constants.QueryParamLimit); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < constants.MinLimit || limit > constants.MaxLimit {
			problems = append(problems, constants.MsgInvalidLimit)
		}
		query.Limit = limit
	}

	if query.Status != "" && !constants.IsValidTaskStatus(query.Status) {
		problems = append(problems, constants.MsgInvalidStatus)
	}

	return query, problems
}
