package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"licgate/internal/services"
)

type VerifyHandler struct {
	Activation *services.ActivationService
}

func NewVerifyHandler(s *services.ActivationService) *VerifyHandler {
	return &VerifyHandler{Activation: s}
}

type verifyRequest struct {
	Code      string `json:"code"`
	MachineID string `json:"machineId"`
}

// VerifyResponse — контракт ответа /verify: всегда {success, message}.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// @Summary      Проверка кода активации
// @Description  Одноразовая активация кода с привязкой к машине; повтор с той же машины идемпотентен
// @Tags         Verify
// @Accept       json
// @Produce      json
// @Param        request  body      verifyRequest  true  "Код и идентификатор машины"
// @Success      200      {object}  VerifyResponse
// @Failure      400      {object}  VerifyResponse
// @Failure      403      {object}  VerifyResponse
// @Failure      404      {object}  VerifyResponse
// @Failure      500      {object}  VerifyResponse
// @Router       /verify [post]
func (h *VerifyHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, VerifyResponse{Success: false, Message: "Invalid request body"})
		return
	}

	// пустые после trim поля — это 400, до БД не ходим
	code := strings.TrimSpace(req.Code)
	machineID := strings.TrimSpace(req.MachineID)
	if code == "" || machineID == "" {
		c.JSON(http.StatusBadRequest, VerifyResponse{Success: false, Message: "Both code and machineId are required"})
		return
	}

	activated, err := h.Activation.Verify(code, machineID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeUnknown):
			c.JSON(http.StatusNotFound, VerifyResponse{Success: false, Message: "Activation code not found"})
		case errors.Is(err, services.ErrCodeBound):
			c.JSON(http.StatusForbidden, VerifyResponse{Success: false, Message: "Activation code is already used on another machine"})
		default:
			// детали — только в лог, наружу общий ответ
			log.Printf("[verify][err] machine=%s: %v", machineID, err)
			c.JSON(http.StatusInternalServerError, VerifyResponse{Success: false, Message: "Verification failed"})
		}
		return
	}

	msg := "License verified"
	if activated {
		msg = "License activated"
	}
	c.JSON(http.StatusOK, VerifyResponse{Success: true, Message: msg})
}
