package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/apperr"
)

const maxBodyBytes = 1 << 20

// writeError maps err onto its status and a caller-safe message. Causes of
// server-side failures are logged and never returned.
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	status := apperr.HTTPStatus(apperr.KindOf(err))
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

// bindJSON decodes the request body into dst. Unknown fields, malformed JSON
// and oversized bodies are validation errors.
func bindJSON(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.Wrap(err, apperr.KindValidation, "request body too large")
		case errors.Is(err, io.EOF):
			return apperr.Wrap(err, apperr.KindValidation, "request body is required")
		default:
			return apperr.Wrap(err, apperr.KindValidation, "invalid request body")
		}
	}
	return nil
}
