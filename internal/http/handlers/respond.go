package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creditedge/backend/internal/domain/fault"
)

// All endpoints answer with the same envelope: success plus data on the
// happy path, success:false plus a machine error code otherwise.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, code string) {
	c.JSON(status, gin.H{"success": false, "error": code})
}

// respondDomainError maps the error taxonomy onto HTTP statuses: validation
// 400, not found 404, state conflicts 409, arithmetic faults 500.
func respondDomainError(c *gin.Context, err error) {
	var v *fault.ValidationError
	if errors.As(err, &v) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_failed", "message": v.Field + ": " + v.Message})
		return
	}
	var conflict *fault.StateConflictError
	if errors.As(err, &conflict) {
		respondError(c, http.StatusConflict, conflict.Code)
		return
	}
	if errors.Is(err, fault.ErrNotFound) {
		respondError(c, http.StatusNotFound, "not_found")
		return
	}
	if fault.IsArithmetic(err) {
		respondError(c, http.StatusInternalServerError, "arithmetic_invariant_violated")
		return
	}
	respondError(c, http.StatusInternalServerError, "internal_error")
}
