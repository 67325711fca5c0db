package server

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	importerdomain "github.com/smallbiznis/churnlytics/internal/importer/domain"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
)

const uploadField = "file"

func (s *Server) PreviewImport(c *gin.Context) {
	fh, ok := s.uploadedFile(c)
	if !ok {
		return
	}
	f, err := fh.Open()
	if err != nil {
		AbortWithError(c, apperror.Processing("open upload", err))
		return
	}
	defer f.Close()

	preview, err := s.importerSvc.Preview(c.Request.Context(), fh.Filename, f)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (s *Server) ImportMembers(c *gin.Context) {
	s.importUpload(c, s.importerSvc.ImportMembers)
}

func (s *Server) ImportCheckins(c *gin.Context) {
	s.importUpload(c, s.importerSvc.ImportCheckins)
}

func (s *Server) ImportHistory(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			AbortWithError(c, apperror.Validation("invalid limit %q", raw))
			return
		}
		limit = n
	}

	batches, err := s.importerSvc.History(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": batches})
}

type importFunc func(ctx context.Context, filename string, r io.Reader, mode string) (importerdomain.Result, error)

func (s *Server) importUpload(c *gin.Context, run importFunc) {
	fh, ok := s.uploadedFile(c)
	if !ok {
		return
	}
	f, err := fh.Open()
	if err != nil {
		AbortWithError(c, apperror.Processing("open upload", err))
		return
	}
	defer f.Close()

	result, err := run(c.Request.Context(), fh.Filename, f, c.PostForm("mode"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// uploadedFile reads the multipart "file" field within the configured size
// limit. It aborts the request and returns false when no usable file is sent.
func (s *Server) uploadedFile(c *gin.Context) (*multipart.FileHeader, bool) {
	if s.cfg.UploadMaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.UploadMaxBytes)
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			AbortWithError(c, err)
		case c.Request.MultipartForm != nil && len(c.Request.MultipartForm.Value[uploadField]) > 0:
			// a part without a filename is decoded as a plain value
			AbortWithError(c, apperror.Validation("No file selected"))
		default:
			AbortWithError(c, ErrFileMissing)
		}
		return nil, false
	}

	c.Set("upload_filename", fh.Filename)
	return fh, true
}
