package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/groundsync/groundsync-be/controllers"
	"github.com/groundsync/groundsync-be/util"
)

type locationRoutes struct {
	controller *controllers.LocationController
}

func AddLocationRoutes(group *gin.RouterGroup, controller *controllers.LocationController) {
	routes := locationRoutes{controller}
	locations := group.Group("/locations")
	locations.GET("", util.HandlerWrapper(routes.getLocations, &util.HandlerOpts{}))
	locations.GET("/validate", util.HandlerWrapper(routes.validateLocation, &util.HandlerOpts{}))
}

func (lr *locationRoutes) getLocations(c *gin.Context) (interface{}, *util.HTTPError) {
	return lr.controller.GetLocations(), nil
}

func (lr *locationRoutes) validateLocation(c *gin.Context) (interface{}, *util.HTTPError) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "name is required",
		}
	}
	return lr.controller.Validate(c, name), nil
}
