package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/epikoding/dictionary/internal/dictionary"
	"github.com/epikoding/dictionary/internal/export"
	"github.com/epikoding/dictionary/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ExportHandler struct {
	service *dictionary.Service
	log     *zap.Logger
}

func NewExportHandler(service *dictionary.Service, log *zap.Logger) *ExportHandler {
	return &ExportHandler{service: service, log: log}
}

// Export downloads the current user's entries. Format is chosen by the
// format query parameter (json, csv or md).
func (h *ExportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	owner := middleware.Session(c).CurrentUserID
	entries, err := h.service.List(c.Request.Context(), owner)
	if err != nil {
		h.log.Error("export failed", zap.String("user", owner), zap.Error(err))
		c.String(http.StatusInternalServerError, "Export failed")
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, owner, entries); err != nil {
		h.log.Error("export failed", zap.String("user", owner), zap.Error(err))
		c.String(http.StatusInternalServerError, "Export failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(owner)))
	c.Data(http.StatusOK, format.ContentType()+"; charset=utf-8", buf.Bytes())
}
