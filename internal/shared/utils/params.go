package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/id"
)

// ParseSIDParam reads a prefixed id from a path parameter and checks its prefix.
func ParseSIDParam(c *gin.Context, paramName, prefix, entityName string) (string, error) {
	sid := c.Param(paramName)
	if sid == "" {
		return "", errors.NewValidationError(entityName + " ID is required")
	}
	if _, err := id.ExtractShortID(sid, prefix); err != nil {
		return "", errors.NewValidationError(
			fmt.Sprintf("invalid %s ID format, expected %s_xxxxx", entityName, prefix),
		)
	}
	return sid, nil
}
