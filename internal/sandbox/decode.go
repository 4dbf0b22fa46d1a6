package sandbox

import (
	"context"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
)

// maxBodyBytes bounds request bodies accepted by DecodeJSON.
const maxBodyBytes = 8 << 20

// ctxKeyDecoded is a typed context key for storing a decoded body of type T.
type ctxKeyDecoded[T any] struct{}

// DecodeJSON decodes the request body into T, rejecting duplicate keys, runs
// validate when it is not nil and stores the value in the request context.
// Failures answer 400 with an ErrorPayload.
func DecodeJSON[T any](validate func(*T) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
			if err != nil {
				return c.JSON(http.StatusBadRequest, ErrorPayload(err))
			}
			if len(data) > maxBodyBytes {
				return c.JSON(http.StatusRequestEntityTooLarge, ErrorPayload(fmt.Errorf("body exceeds %d bytes", maxBodyBytes)))
			}
			dups, err := alloy.DuplicateKeys(data)
			if err != nil {
				return c.JSON(http.StatusBadRequest, ErrorPayload(err))
			}
			if len(dups) > 0 {
				return c.JSON(http.StatusBadRequest, ErrorPayload(dups))
			}
			v := new(T)
			if err := json.Unmarshal(data, v); err != nil {
				return c.JSON(http.StatusBadRequest, ErrorPayload(err))
			}
			if validate != nil {
				if err := validate(v); err != nil {
					return c.JSON(http.StatusBadRequest, ErrorPayload(err))
				}
			}
			ctx := context.WithValue(c.Request().Context(), ctxKeyDecoded[T]{}, v)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Decoded fetches the value stored by DecodeJSON.
func Decoded[T any](c echo.Context) (*T, bool) {
	v, ok := c.Request().Context().Value(ctxKeyDecoded[T]{}).(*T)
	return v, ok
}

// ErrorPayload shapes an error for JSON responses. Validation issues are
// listed individually.
func ErrorPayload(err error) map[string]any {
	if iss, ok := alloy.AsIssues(err); ok {
		return map[string]any{"issues": iss}
	}
	return map[string]any{"error": err.Error()}
}
