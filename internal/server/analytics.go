package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) Overview(c *gin.Context) {
	respondReport(c, s.analytics.Overview)
}

func (s *Server) ChurnAnalysis(c *gin.Context) {
	respondReport(c, s.analytics.ChurnAnalysis)
}

func (s *Server) AtRiskMembers(c *gin.Context) {
	respondReport(c, s.analytics.AtRiskMembers)
}

func (s *Server) Engagement(c *gin.Context) {
	respondReport(c, s.analytics.Engagement)
}

func (s *Server) Revenue(c *gin.Context) {
	respondReport(c, s.analytics.Revenue)
}

func (s *Server) SalesFunnel(c *gin.Context) {
	respondReport(c, s.analytics.SalesFunnel)
}

func (s *Server) LocationComparison(c *gin.Context) {
	respondReport(c, s.analytics.LocationComparison)
}

func respondReport[T any](c *gin.Context, compute func(context.Context) (T, error)) {
	report, err := compute(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
