package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uni-adm/assignment-api/internal/service"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
	"github.com/uni-adm/assignment-api/pkg/response"
)

// AssignmentHandler wires assignment and workload services to HTTP routes.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	workload    *service.WorkloadService
}

// NewAssignmentHandler constructs a new AssignmentHandler.
func NewAssignmentHandler(assignments *service.AssignmentService, workload *service.WorkloadService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, workload: workload}
}

// List godoc
// @Summary List a teacher's assignments
// @Tags Assignments
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.assignments.ListByPerson(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Create godoc
// @Summary Appoint a teacher to a section
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Person ID"
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /teachers/{id}/assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.assignments.Create(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result.Assignment, nil, advisoryMeta(result))
}

// Update godoc
// @Summary Rewrite an assignment's dates, position and dedication
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Person ID"
// @Param aid path string true "Assignment ID"
// @Param payload body service.UpdateAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments/{aid} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	result, err := h.assignments.Update(c.Request.Context(), c.Param("id"), c.Param("aid"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Assignment, nil, advisoryMeta(result))
}

// Close godoc
// @Summary End an assignment as of today
// @Tags Assignments
// @Produce json
// @Param id path string true "Person ID"
// @Param aid path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments/{aid}/close [post]
func (h *AssignmentHandler) Close(c *gin.Context) {
	assignment, err := h.assignments.Close(c.Request.Context(), c.Param("id"), c.Param("aid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Workload godoc
// @Summary Current weekly workload of a teacher
// @Tags Assignments
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/workload [get]
func (h *AssignmentHandler) Workload(c *gin.Context) {
	summary, err := h.workload.AggregateCached(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

func advisoryMeta(result *service.AssignmentResult) map[string]interface{} {
	if result.Advisory == "" {
		return nil
	}
	return map[string]interface{}{"advisory": result.Advisory}
}
