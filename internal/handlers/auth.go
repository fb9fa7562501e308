package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"myo_monitor/internal/service"
)

type operatorCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authStatus maps registration and sign-in errors. Sign-in never reveals
// whether the operator or the password was wrong.
func authStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidOperatorName), errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrOperatorExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidPassword):
		return http.StatusUnauthorized, "invalid credentials"
	default:
		return http.StatusInternalServerError, "authentication unavailable"
	}
}

func (h *Handler) bindCredentials(c *gin.Context) (operatorCredentials, bool) {
	var in operatorCredentials
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return in, false
	}
	return in, true
}

// @Summary      Register operator
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Operator name (3-32 of letters, digits, -_.) and password (8+ chars)"
// @Success      201   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	in, ok := h.bindCredentials(c)
	if !ok {
		return
	}
	id, err := h.services.Authorization.SignUp(in.Username, in.Password)
	if err != nil {
		code, msg := authStatus(err)
		h.logAndJSONError(c, code, msg, "operator_sign_up_failed", err, "operator", in.Username)
		return
	}
	if h.log != nil {
		h.log.Infow("operator_registered", "operator", id)
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Issue operator token
// @Description  The token authorizes the acquisition, gain and filter commands.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Credentials"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	in, ok := h.bindCredentials(c)
	if !ok {
		return
	}
	token, err := h.services.Authorization.GenerateToken(in.Username, in.Password)
	if err != nil {
		code, msg := authStatus(err)
		h.logAndJSONError(c, code, msg, "operator_sign_in_failed", err, "operator", in.Username)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "token_type": "Bearer"})
}
