package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitalkonsult/vk-api/internal/models"
	"github.com/vitalkonsult/vk-api/internal/service"
	appErrors "github.com/vitalkonsult/vk-api/pkg/errors"
	"github.com/vitalkonsult/vk-api/pkg/response"
)

// InquiryHandler exposes inquiry endpoints.
type InquiryHandler struct {
	inquiries *service.InquiryService
}

// NewInquiryHandler constructs InquiryHandler.
func NewInquiryHandler(inquiries *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

// List godoc
// @Summary List inquiries
// @Tags Inquiries
// @Produce json
// @Param search query string false "Search by name or mobile"
// @Param course query string false "Filter by interested course"
// @Param college query string false "Filter by college"
// @Param created_by query string false "Filter by counselor name"
// @Param date_filter query string false "today, yesterday, last_week or custom"
// @Param start_date query string false "Custom range start (YYYY-MM-DD)"
// @Param end_date query string false "Custom range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /inquiries [get]
func (h *InquiryHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	query := service.ListInquiriesQuery{Criteria: criteriaFromQuery(c)}
	query.Page, query.PageSize = pageFromQuery(c)

	inquiries, pagination, err := h.inquiries.List(c.Request.Context(), *claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiries, pagination)
}

// Get godoc
// @Summary Get inquiry detail
// @Tags Inquiries
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Envelope
// @Router /inquiries/{id} [get]
func (h *InquiryHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	inquiry, err := h.inquiries.Get(c.Request.Context(), *claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiry, nil)
}

// Create godoc
// @Summary Create inquiry
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param payload body service.InquiryRequest true "Inquiry payload"
// @Success 201 {object} response.Envelope
// @Router /inquiries [post]
func (h *InquiryHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inquiry, err := h.inquiries.Create(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inquiry)
}

// Update godoc
// @Summary Update inquiry
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param id path string true "Inquiry ID"
// @Param payload body service.InquiryRequest true "Inquiry payload"
// @Success 200 {object} response.Envelope
// @Router /inquiries/{id} [put]
func (h *InquiryHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inquiry, err := h.inquiries.Update(c.Request.Context(), *claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiry, nil)
}

type leadStatusRequest struct {
	LeadStatus models.LeadStatus `json:"lead_status" binding:"required"`
}

// UpdateLeadStatus godoc
// @Summary Update inquiry lead status
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Envelope
// @Router /inquiries/{id}/lead-status [patch]
func (h *InquiryHandler) UpdateLeadStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req leadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inquiry, err := h.inquiries.UpdateLeadStatus(c.Request.Context(), *claims, c.Param("id"), req.LeadStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiry, nil)
}
