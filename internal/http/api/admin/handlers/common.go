package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// parseIDParam parses the numeric :id route parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil {
		return 0, false
	}
	return id, true
}

// parseDate accepts RFC3339 timestamps and bare dates.
func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if parsed, errParse := time.Parse(time.RFC3339, trimmed); errParse == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", trimmed)
}
