package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	exportdomain "github.com/smallbiznis/churnlytics/internal/export/domain"
)

func (s *Server) ExportReport(kind exportdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := s.exportSvc.Export(c.Request.Context(), kind)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		sendFile(c, file)
	}
}

func (s *Server) ExportOverviewPDF(c *gin.Context) {
	file, err := s.exportSvc.OverviewPDF(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	sendFile(c, file)
}

func (s *Server) DownloadTemplate(c *gin.Context) {
	tpl, err := exportdomain.ParseTemplate(c.Param("name"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	file, err := s.exportSvc.Template(c.Request.Context(), tpl)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	sendFile(c, file)
}

func sendFile(c *gin.Context, file exportdomain.File) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
