package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/primary"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case nil:
		return http.StatusOK
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrForbidden:
		return http.StatusForbidden
	case apperr.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperr.ErrValidation:
		return http.StatusUnprocessableEntity
	case apperr.ErrConflict:
		return http.StatusConflict
	case apperr.ErrPreconditionFailed:
		return http.StatusPreconditionFailed
	case apperr.ErrInvalidState:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(StatusFor(err), primary.ResultFromError(err))
}

// badRequest answers a body or query that could not be decoded.
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, primary.Result{Error: err.Error(), Code: "bad_request"})
}

// done answers a mutation.
func done(c *gin.Context, status int, id, message string, err error) {
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(status, primary.Success(id, message))
}

// reply answers a read.
func reply[T any](c *gin.Context, v T, err error) {
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// bind decodes the JSON body into dst. An empty body leaves dst untouched.
func bind(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, apperr.Newf(apperr.ErrValidation, "%s: expected an integer, got %q", name, raw))
		return 0, false
	}
	return n, true
}

// queryBool reads an optional boolean query parameter.
func queryBool(c *gin.Context, name string) (bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, apperr.Newf(apperr.ErrValidation, "%s: expected a boolean, got %q", name, raw))
		return false, false
	}
	return b, true
}
