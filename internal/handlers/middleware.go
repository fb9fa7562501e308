package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const operatorCtxKey = "operatorId"

var (
	errNoCredentials  = errors.New("missing Authorization header")
	errBadCredentials = errors.New("invalid Authorization header format")
)

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errNoCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.ContainsRune(token, ' ') {
		return "", errBadCredentials
	}
	return token, nil
}

// operatorMiddleware gates the device API. Requests without a valid
// operator token never reach a handler that touches the device.
func (h *Handler) operatorMiddleware(c *gin.Context) {
	token, err := bearerToken(c.GetHeader("Authorization"))
	if err != nil {
		h.rejectOperator(c, err.Error(), err)
		return
	}
	id, err := h.services.Authorization.ParseToken(token)
	if err != nil {
		h.rejectOperator(c, "invalid or expired token", err)
		return
	}
	c.Set(operatorCtxKey, id)
	c.Next()
}

func (h *Handler) rejectOperator(c *gin.Context, msg string, err error) {
	if h.log != nil {
		h.log.Warnw("operator_rejected", "path", c.FullPath(), "method", c.Request.Method, "err", err)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// operatorID returns the operator set by operatorMiddleware, or 0.
func operatorID(c *gin.Context) int {
	return c.GetInt(operatorCtxKey)
}

// auditControl records a device command that was applied on behalf of
// the calling operator.
func (h *Handler) auditControl(c *gin.Context, action string, kv ...any) {
	if h.log == nil {
		return
	}
	h.log.Infow(action, append([]any{"operator", operatorID(c)}, kv...)...)
}
