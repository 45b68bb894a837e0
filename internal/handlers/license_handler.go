package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"licgate/internal/pdf"
	"licgate/internal/services"
)

type LicenseHandler struct {
	service *services.LicenseService
	pdfGen  pdf.Generator
}

func NewLicenseHandler(service *services.LicenseService, pdfGen pdf.Generator) *LicenseHandler {
	return &LicenseHandler{service: service, pdfGen: pdfGen}
}

type issueRequest struct {
	Count int    `json:"count"`
	Email string `json:"email" binding:"omitempty,email"` // куда отправить выпущенные коды
}

// @Summary      Выпуск кодов активации
// @Tags         Licenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      issueRequest  true  "Количество и необязательный email"
// @Success      201      {array}   models.LicenseCode
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /admin/licenses [post]
func (h *LicenseHandler) Issue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	codes, err := h.service.Issue(req.Count, req.Email)
	if err != nil {
		log.Printf("[license][issue][err] count=%d: %v", req.Count, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue codes"})
		return
	}
	c.JSON(http.StatusCreated, codes)
}

// @Summary      Список кодов
// @Tags         Licenses
// @Security     BearerAuth
// @Produce      json
// @Param        used    query     bool  false  "Фильтр по использованности"
// @Param        limit   query     int   false  "Размер страницы"
// @Param        offset  query     int   false  "Смещение"
// @Success      200     {array}   models.LicenseCode
// @Failure      500     {object}  map[string]string
// @Router       /admin/licenses [get]
func (h *LicenseHandler) List(c *gin.Context) {
	var used *bool
	if v, ok := c.GetQuery("used"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "used must be a boolean"})
			return
		}
		used = &b
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	codes, err := h.service.List(used, limit, offset)
	if err != nil {
		log.Printf("[license][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list codes"})
		return
	}
	c.JSON(http.StatusOK, codes)
}

// @Summary      Код по ID
// @Tags         Licenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "ID кода"
// @Success      200  {object}  models.LicenseCode
// @Failure      404  {object}  map[string]string
// @Router       /admin/licenses/{id} [get]
func (h *LicenseHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	rec, err := h.service.Get(id)
	if err != nil {
		h.respondServiceError(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Удаление неиспользованного кода
// @Description  Активированная запись неизменяема, её удалить нельзя (409)
// @Tags         Licenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "ID кода"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/licenses/{id} [delete]
func (h *LicenseHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.service.Delete(id); err != nil {
		h.respondServiceError(c, "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Code deleted"})
}

// @Summary      Журнал активаций по коду
// @Tags         Licenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "ID кода"
// @Success      200  {array}   models.ActivationEvent
// @Failure      404  {object}  map[string]string
// @Router       /admin/licenses/{id}/events [get]
func (h *LicenseHandler) Events(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	events, err := h.service.EventsFor(id)
	if err != nil {
		h.respondServiceError(c, "events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// @Summary      PDF-сертификат активации
// @Tags         Licenses
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id   path  int  true  "ID кода"
// @Success      200  {file}    file
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/licenses/{id}/certificate [get]
func (h *LicenseHandler) Certificate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	rec, err := h.service.Get(id)
	if err != nil {
		h.respondServiceError(c, "certificate", err)
		return
	}
	if !rec.IsUsed || rec.MachineID == nil || rec.UsedAt == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Code is not activated yet"})
		return
	}

	path, err := h.pdfGen.GenerateCertificate(pdf.CertificateData{
		CodeID:    rec.ID,
		Code:      rec.Code,
		MachineID: *rec.MachineID,
		UsedAt:    *rec.UsedAt,
		IssuedAt:  rec.CreatedAt,
	})
	if err != nil {
		log.Printf("[license][certificate][err] id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate certificate"})
		return
	}
	c.FileAttachment(path, "certificate.pdf")
}

// @Summary      Сводка по кодам
// @Tags         Licenses
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  services.Stats
// @Failure      500  {object}  map[string]string
// @Router       /admin/stats [get]
func (h *LicenseHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		log.Printf("[license][stats][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *LicenseHandler) respondServiceError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, services.ErrLicenseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Code not found"})
	case errors.Is(err, services.ErrLicenseUsed):
		c.JSON(http.StatusConflict, gin.H{"error": "Code is already activated"})
	default:
		log.Printf("[license][%s][err] %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
