// Package controllers translates JSON request bodies into repository and quiz
// calls and JSON-encodes the results. Status mapping for the shared error
// taxonomy lives here so every controller reports failures the same way.
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trajecta/trajecta/apperror"
	"github.com/trajecta/trajecta/utils"
)

// respondError maps a taxonomy error onto an HTTP status. Unknown errors are
// reported as 500 without leaking internals.
func respondError(ctx *gin.Context, err error) {
	var appErr *apperror.AppError
	msg := "internal error"
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40000, msg)
	case errors.Is(err, apperror.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, msg)
	case errors.Is(err, apperror.ErrConflict):
		utils.Error(ctx, http.StatusConflict, 40900, msg)
	case errors.Is(err, apperror.ErrTransient):
		utils.Error(ctx, http.StatusServiceUnavailable, 50300, "storage temporarily unavailable")
	case errors.Is(err, apperror.ErrUpstream):
		utils.Error(ctx, http.StatusBadGateway, 50200, msg)
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorf("unhandled error: %v", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}

// respondPersistenceDown reports degraded mode: the store is not configured,
// so the operation cannot be served. Distinct from "not found".
func respondPersistenceDown(ctx *gin.Context) {
	utils.Error(ctx, http.StatusServiceUnavailable, 50301, "persistence is not configured")
}
