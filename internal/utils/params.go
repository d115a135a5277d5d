package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetIDParam parses a numeric path parameter.
func GetIDParam(ctx *gin.Context, name string) (uint, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return 0, errors.New("Missing " + name + " parameter")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + name + " parameter")
	}

	return uint(id), nil
}

// ParsePagination reads page/limit query values with sane bounds.
func ParsePagination(ctx *gin.Context, defaultLimit int, maxLimit int) (page int, limit int, offset int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit, (page - 1) * limit
}

// TotalPages computes the page count for a result set.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
