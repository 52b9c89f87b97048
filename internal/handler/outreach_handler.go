package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitalkonsult/vk-api/internal/models"
	"github.com/vitalkonsult/vk-api/internal/service"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
	"github.com/vitalkonsult/vk-api/pkg/response"
)

// OutreachHandler exposes placement outreach endpoints.
type OutreachHandler struct {
	outreach *service.OutreachService
}

// NewOutreachHandler constructs OutreachHandler.
func NewOutreachHandler(outreach *service.OutreachService) *OutreachHandler {
	return &OutreachHandler{outreach: outreach}
}

// List godoc
// @Summary List outreach activities
// @Tags Outreach
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /outreach [get]
func (h *OutreachHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, size := pageFromQuery(c)
	activities, total, err := h.outreach.List(c.Request.Context(), *claims, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	response.JSON(c, http.StatusOK, activities, pagination)
}

// Get godoc
// @Summary Get outreach activity
// @Tags Outreach
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /outreach/{id} [get]
func (h *OutreachHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	activity, err := h.outreach.Get(c.Request.Context(), *claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Log godoc
// @Summary Log a company contact
// @Tags Outreach
// @Accept json
// @Produce json
// @Param payload body service.OutreachRequest true "Outreach payload"
// @Success 201 {object} response.Envelope
// @Router /outreach [post]
func (h *OutreachHandler) Log(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.OutreachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	activity, err := h.outreach.Log(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}
