// Package handler exposes the compression service over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seiflotfy/huffpack/internal/service"
)

const containerContentType = "application/x-huffpack"

type CompressionHandler struct {
	svc     *service.CompressionService
	maxBody int64
}

func NewCompressionHandler(s *service.CompressionService, maxBody int64) *CompressionHandler {
	return &CompressionHandler{svc: s, maxBody: maxBody}
}

// body reads the request body, answering 413 when it exceeds the limit.
func (h *CompressionHandler) body(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	data, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return data, true
}

func (h *CompressionHandler) Compress(c *gin.Context) {
	data, ok := h.body(c)
	if !ok {
		return
	}
	out, err := h.svc.Compress(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, containerContentType, out)
}

func (h *CompressionHandler) Decompress(c *gin.Context) {
	data, ok := h.body(c)
	if !ok {
		return
	}
	out, err := h.svc.Decompress(data)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContainer) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", out)
}

func (h *CompressionHandler) Codebook(c *gin.Context) {
	data, ok := h.body(c)
	if !ok {
		return
	}
	report, err := h.svc.Codebook(data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
