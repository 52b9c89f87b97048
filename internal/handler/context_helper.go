package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitalkonsult/vk-api/internal/filter"
	"github.com/vitalkonsult/vk-api/internal/middleware"
	"github.com/vitalkonsult/vk-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// criteriaFromQuery maps the shared list-view query parameters onto the
// filter engine's criteria. Invalid custom dates are ignored rather than
// rejected, matching the views' clear-on-bad-input behaviour.
func criteriaFromQuery(c *gin.Context) filter.Criteria {
	criteria := filter.Criteria{
		Search:     strings.TrimSpace(c.Query("search")),
		Course:     c.Query("course"),
		College:    strings.TrimSpace(c.Query("college")),
		CreatedBy:  strings.TrimSpace(c.Query("created_by")),
		DateFilter: filter.DateBucket(c.Query("date_filter")),
	}
	if raw := c.Query("start_date"); raw != "" {
		if ts, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
			criteria.StartDate = &ts
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if ts, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
			criteria.EndDate = &ts
		}
	}
	return criteria
}

func pageFromQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}
