package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uni-adm/assignment-api/internal/service"
	appErrors "github.com/uni-adm/assignment-api/pkg/errors"
	"github.com/uni-adm/assignment-api/pkg/response"
)

// RegimeHandler wires regime administration to HTTP routes.
type RegimeHandler struct {
	regimes *service.RegimeService
}

// NewRegimeHandler constructs a new RegimeHandler.
func NewRegimeHandler(regimes *service.RegimeService) *RegimeHandler {
	return &RegimeHandler{regimes: regimes}
}

// List godoc
// @Summary List workload regimes
// @Tags Regimes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /regimes [get]
func (h *RegimeHandler) List(c *gin.Context) {
	regimes, err := h.regimes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regimes, nil)
}

// Activate godoc
// @Summary Activate a workload regime for a modality and dedication
// @Tags Regimes
// @Accept json
// @Produce json
// @Param payload body service.ActivateRegimeRequest true "Regime payload"
// @Success 201 {object} response.Envelope
// @Router /regimes [post]
func (h *RegimeHandler) Activate(c *gin.Context) {
	var req service.ActivateRegimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid regime payload"))
		return
	}
	regime, err := h.regimes.Activate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, regime)
}

// Deactivate godoc
// @Summary Deactivate a workload regime
// @Tags Regimes
// @Produce json
// @Param id path string true "Regime ID"
// @Success 204
// @Router /regimes/{id} [delete]
func (h *RegimeHandler) Deactivate(c *gin.Context) {
	if err := h.regimes.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
