package handler

import (
	"errors"
	"net/http"

	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an infrastructure failure: logged in full,
// reported without internal detail.
func writeError(c *gin.Context, err error) {
	var (
		validation   *apperror.ValidationError
		invalidState *apperror.InvalidStateError
		notFound     *apperror.NotFoundError
		auth         *apperror.AuthError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, validation.Detail))
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, invalidState.Detail))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, notFound.Detail))
	case errors.As(err, &auth):
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, auth.Detail))
	default:
		log.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
	}
}
