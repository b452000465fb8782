package rest

import (
	"fmt"
	"net/http"

	"github.com/dfryer1193/goblog-backend/blog/application"
	"github.com/dfryer1193/goblog-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the backend gin engine: request logging, panic recovery,
// optional request metrics, templates and every backend route behind guard.
func NewRouter(routes *Routes, posts *PostController, guard gin.HandlerFunc, metrics *middleware.Metrics) (*gin.Engine, error) {
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	if metrics != nil {
		router.Use(metrics.Handler())
	}

	tmpl, err := LoadTemplates(routes)
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/", func(c *gin.Context) {
		target, err := routes.URLFor(application.RouteList, nil)
		if err != nil {
			_ = c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Redirect(http.StatusFound, target)
	})

	if err := NewApi(router, routes, posts, guard); err != nil {
		return nil, err
	}

	return router, nil
}

// NewApi registers every backend route on router behind guard.
func NewApi(router *gin.Engine, routes *Routes, posts *PostController, guard gin.HandlerFunc) error {
	handlers := posts.Handlers()

	backend := router.Group("/")
	if guard != nil {
		backend.Use(guard)
	}

	for _, route := range routes.All() {
		handler, ok := handlers[route.Name]
		if !ok {
			return fmt.Errorf("no handler for route %s", route.Name)
		}
		for _, method := range route.Methods {
			backend.Handle(method, route.Path, handler)
		}
	}

	return nil
}
