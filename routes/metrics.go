package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func AddMetricsRoutes(group *gin.RouterGroup) {
	group.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
