package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitalkonsult/vk-api/internal/service"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
	"github.com/vitalkonsult/vk-api/pkg/response"
)

// DashboardHandler exposes the role-dispatched dashboard endpoint.
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Get godoc
// @Summary Dashboard for the caller's role
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dashboard, err := h.dashboards.ForRole(c.Request.Context(), *claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
