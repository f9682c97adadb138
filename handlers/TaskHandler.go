// Package handlers provides the HTTP request handlers for TaskAPI.
//
// This package contains the handlers for the task resource (CRUD operations), the liveness
// endpoint and the optional login endpoint. Handlers depend on a store.Store passed in
// through NewHandler and never touch the database directly.
//
// Request bodies are decoded into models.TaskCreate or models.TaskUpdate and checked with the
// validator built by the validation package. Constraint violations are answered with 422 and a
// field-level detail list, unknown ids with 404 and the message "Task with id {id} not found".
//
// Every handler takes the endpoint and error counters so that main can wrap it with metrics.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"TaskAPI/commands"
	"TaskAPI/models"
	"TaskAPI/response"
	"TaskAPI/store"
	"TaskAPI/validation"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const healthMessage = "Task Management API is running"

// Handler holds what every task handler shares: the store, the validator, the
// logger and the optional token settings.
type Handler struct {
	store    store.Store
	validate *validator.Validate
	log      *logrus.Logger
	auth     AuthConfig
}

// NewHandler returns a Handler over s. Auth is disabled when auth.SecretKey is empty.
func NewHandler(s store.Store, log *logrus.Logger, auth AuthConfig) *Handler {
	return &Handler{
		store:    s,
		validate: validation.New(),
		log:      log,
		auth:     auth,
	}
}

// HealthHandler reports that the service is up.
//
//	@Summary	Liveness check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	response.Health
//	@Router		/ [get]
func (h *Handler) HealthHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	endPointCounter.WithLabelValues("/").Inc()
	writeJSON(res, http.StatusOK, response.Health{Status: "healthy", Message: healthMessage})
}

// CreateTaskHandler handles the HTTP request for creating a new task.
// It reads the request body, validates it against models.TaskCreate and inserts the task.
// Description and completed are optional; completed defaults to false.
//
// Example request body:
//
//	{
//	  "title": "Buy groceries",
//	  "description": "Milk and eggs"
//	}
//
// Example response (201):
//
//	{
//	  "id": 1,
//	  "title": "Buy groceries",
//	  "description": "Milk and eggs",
//	  "completed": false
//	}
//
//	@Summary	Create a task
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Param		task	body		models.TaskCreate	true	"Task to create"
//	@Success	201		{object}	models.Task
//	@Failure	422		{object}	response.ValidationDetail
//	@Router		/tasks [post]
func (h *Handler) CreateTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint = "/tasks"
	endPointCounter.WithLabelValues(endpoint).Inc()
	fields := logrus.Fields{
		"task operation": "create a task",
		"request":        "POST /tasks",
	}
	if !h.authorize(res, req, fields, roleUser, roleAdmin) {
		errorCounter.WithLabelValues(endpoint).Inc()
		return
	}

	var payload models.TaskCreate
	if err := decodeBody(req, &payload); err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.log.WithFields(fields).Error("invalid request body")
		writeValidation(res, validation.FieldErrors(fmt.Errorf("invalid request body: %w", err)))
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.log.WithFields(fields).Error("invalid request body inputs")
		writeValidation(res, validation.FieldErrors(err))
		return
	}

	task, err := h.store.Insert(req.Context(), payload)
	if err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.internalError(res, fields, err)
		return
	}
	h.log.WithFields(fields).WithField("task id", task.Id).Info("task created")
	writeJSON(res, http.StatusCreated, task)
}

// ListTasksHandler handles the HTTP request for retrieving every task in creation order.
// The optional query parameters "page" and "pagesize" select one page of the list.
//
// Example request:
// GET /tasks?page=1&pagesize=10
//
//	@Summary	List tasks
//	@Tags		tasks
//	@Produce	json
//	@Param		page		query		int	false	"1-based page number"
//	@Param		pagesize	query		int	false	"tasks per page"
//	@Success	200			{array}		models.Task
//	@Failure	422			{object}	response.ValidationDetail
//	@Router		/tasks [get]
func (h *Handler) ListTasksHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint = "/tasks"
	endPointCounter.WithLabelValues(endpoint).Inc()
	fields := logrus.Fields{
		"task operation": "get all tasks",
		"request":        "GET /tasks",
	}
	if !h.authorize(res, req, fields, roleUser, roleAdmin) {
		errorCounter.WithLabelValues(endpoint).Inc()
		return
	}

	cmd, param, err := commands.ParseListTasks(req)
	if err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.log.WithFields(fields).Error(err.Error())
		writeValidation(res, []response.FieldError{{Loc: []string{"query", param}, Msg: err.Error(), Type: "int_parsing"}})
		return
	}

	tasks, err := h.store.List(req.Context(), cmd.Page)
	if err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.internalError(res, fields, err)
		return
	}
	h.log.WithFields(fields).WithField("count", len(tasks)).Info("Processing request")
	writeJSON(res, http.StatusOK, tasks)
}

// GetTaskHandler handles the HTTP request for retrieving one task by the {id} path segment.
//
// Example request:
// GET /tasks/1
//
//	@Summary	Get a task
//	@Tags		tasks
//	@Produce	json
//	@Param		id	path		int	true	"Task id"
//	@Success	200	{object}	models.Task
//	@Failure	404	{object}	response.Detail
//	@Failure	422	{object}	response.ValidationDetail
//	@Router		/tasks/{id} [get]
func (h *Handler) GetTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint = "/tasks/{id}"
	endPointCounter.WithLabelValues(endpoint).Inc()
	fields := logrus.Fields{
		"task operation": "get task by id",
		"request":        "GET /tasks/{id}",
	}
	if !h.authorize(res, req, fields, roleUser, roleAdmin) {
		errorCounter.WithLabelValues(endpoint).Inc()
		return
	}
	cmd, ok := h.taskId(res, req, fields)
	if !ok {
		errorCounter.WithLabelValues(endpoint).Inc()
		return
	}

	task, err := h.store.Get(req.Context(), cmd.Id)
	if err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.storeError(res, fields, cmd.Id, err)
		return
	}
	h.log.WithFields(fields).WithField("task id", task.Id).Info("Processing request")
	writeJSON(res, http.StatusOK, task)
}

// UpdateTaskHandler handles the HTTP request for a partial update of a task.
// Only the fields present in the body change; the others keep their stored values.
// "description": null clears the description, while null is rejected for title and completed.
//
// Example request body:
//
//	{
//	  "completed": true
//	}
//
//	@Summary	Update a task
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Task id"
//	@Param		task	body		models.TaskUpdate	true	"Fields to change"
//	@Success	200		{object}	models.Task
//	@Failure	404		{object}	response.Detail
//	@Failure	422		{object}	response.ValidationDetail
//	@Router		/tasks/{id} [put]
func (h *Handler) UpdateTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint = "/tasks/{id}"
	endPointCounter.WithLabelValues(endpoint).Inc()
	fields := logrus.Fields{
		"task operation": "update a task",
		"request":        "PUT /tasks/{id}",
	}
	if !h.authorize(res, req, fields, roleUser, roleAdmin) {
		errorCounter.WithLabelValues(endpoint).Inc()
		return
	}
	cmd, ok := h.taskId(res, req, fields)
	if !ok {
		errorCounter.WithLabelValues(endpoint).Inc()
		return
	}

	var payload models.TaskUpdate
	if err := decodeBody(req, &payload); err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.log.WithFields(fields).Error("invalid request body")
		writeValidation(res, validation.FieldErrors(fmt.Errorf("invalid request body: %w", err)))
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.log.WithFields(fields).Error("invalid request body inputs")
		writeValidation(res, validation.FieldErrors(err))
		return
	}

	task, err := h.store.Update(req.Context(), cmd.Id, payload)
	if err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.storeError(res, fields, cmd.Id, err)
		return
	}
	h.log.WithFields(fields).WithField("task id", task.Id).Info("task updated")
	writeJSON(res, http.StatusOK, task)
}

// DeleteTaskHandler handles the HTTP request for deleting a task.
// It answers 204 with an empty body. When auth is enabled only the "admin" role may delete.
//
//	@Summary	Delete a task
//	@Tags		tasks
//	@Param		id	path	int	true	"Task id"
//	@Success	204
//	@Failure	404	{object}	response.Detail
//	@Router		/tasks/{id} [delete]
func (h *Handler) DeleteTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint = "/tasks/{id}"
	endPointCounter.WithLabelValues(endpoint).Inc()
	fields := logrus.Fields{
		"task operation": "delete a task",
		"request":        "DELETE /tasks/{id}",
	}
	if !h.authorize(res, req, fields, roleAdmin) {
		errorCounter.WithLabelValues(endpoint).Inc()
		return
	}
	cmd, ok := h.taskId(res, req, fields)
	if !ok {
		errorCounter.WithLabelValues(endpoint).Inc()
		return
	}

	if err := h.store.Delete(req.Context(), cmd.Id); err != nil {
		errorCounter.WithLabelValues(endpoint).Inc()
		h.storeError(res, fields, cmd.Id, err)
		return
	}
	h.log.WithFields(fields).WithField("task id", cmd.Id).Info("task deleted")
	res.WriteHeader(http.StatusNoContent)
}

func (h *Handler) taskId(res http.ResponseWriter, req *http.Request, fields logrus.Fields) (commands.TaskIdCommand, bool) {
	cmd, err := commands.ParseTaskId(req)
	if err != nil {
		h.log.WithFields(fields).Error("Invalid task ID")
		writeValidation(res, []response.FieldError{{Loc: []string{"path", "id"}, Msg: err.Error(), Type: "int_parsing"}})
		return cmd, false
	}
	return cmd, true
}

func (h *Handler) storeError(res http.ResponseWriter, fields logrus.Fields, id int, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.log.WithFields(fields).WithField("task id", id).Error("task not found")
		writeJSON(res, http.StatusNotFound, response.Detail{Detail: fmt.Sprintf("Task with id %d not found", id)})
		return
	}
	h.internalError(res, fields, err)
}

func (h *Handler) internalError(res http.ResponseWriter, fields logrus.Fields, err error) {
	h.log.WithFields(fields).Error(err.Error())
	writeJSON(res, http.StatusInternalServerError, response.Detail{Detail: "internal server error"})
}

// decodeBody decodes exactly one JSON value from the request body into v.
func decodeBody(req *http.Request, v interface{}) error {
	dec := json.NewDecoder(req.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after the JSON body")
	}
	return nil
}

func writeValidation(res http.ResponseWriter, errs []response.FieldError) {
	writeJSON(res, http.StatusUnprocessableEntity, response.ValidationDetail{Detail: errs})
}

func writeJSON(res http.ResponseWriter, code int, payload interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(code)
	json.NewEncoder(res).Encode(payload)
}
