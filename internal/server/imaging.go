package server

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hintboard/hintboard/internal/imaging"
)

// CompressImage accepts a multipart upload under "image" and answers with a
// base64 JPEG. target_bytes and max_dim form fields override the defaults; a
// missed budget still returns the smallest rendition, flagged budget_missed.
func (s *Server) CompressImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		AbortWithError(c, newValidationError("image", "required", "image file is required"))
		return
	}
	defer file.Close()

	if header.Size > imaging.MaxInputBytes {
		AbortWithError(c, imaging.ErrInputTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxInputBytes+1))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	opts := imaging.Options{}
	if raw := strings.TrimSpace(c.PostForm("target_bytes")); raw != "" {
		target, err := strconv.Atoi(raw)
		if err != nil || target <= 0 {
			AbortWithError(c, newValidationError("target_bytes", "invalid_target", "target_bytes must be a positive integer"))
			return
		}
		opts.TargetBytes = target
	}
	if raw := strings.TrimSpace(c.PostForm("max_dim")); raw != "" {
		maxDim, err := strconv.Atoi(raw)
		if err != nil || maxDim <= 0 {
			AbortWithError(c, newValidationError("max_dim", "invalid_dimension", "max_dim must be a positive integer"))
			return
		}
		opts.MaxDim = maxDim
	}

	result, err := s.compressor.Compress(data, opts)
	budgetMissed := errors.Is(err, imaging.ErrBudgetTooLow)
	if err != nil && !budgetMissed {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":          base64.StdEncoding.EncodeToString(result.Data),
		"content_type":  "image/jpeg",
		"quality":       result.Quality,
		"width":         result.Width,
		"height":        result.Height,
		"bytes":         len(result.Data),
		"budget_missed": budgetMissed,
	})
}
