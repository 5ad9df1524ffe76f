package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/capykyo/capy-book-fetch/internal/apperrors"
)

// MsgRouteNotFound is the error for unknown routes.
const MsgRouteNotFound = "route not found"

// Routes bundles what SetupRoutes registers.
type Routes struct {
	Extract *ExtractHandler
	Auth    *AuthHandler
	// RequireAuth guards protected endpoints.
	RequireAuth gin.HandlerFunc
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Development exposes the login endpoint.
	Development bool
}

// NotFoundResponse is the body returned for unknown routes.
type NotFoundResponse struct {
	apperrors.Response
	Path string `json:"path"`
}

// SetupRoutes registers the API on router.
func SetupRoutes(router *gin.Engine, rt Routes) {
	apiGroup := router.Group("/api")

	apiGroup.POST("/extract", rt.Extract.BindRequest, rt.RequireAuth, rt.Extract.Extract)

	authGroup := apiGroup.Group("/auth")
	authGroup.GET("/verify", rt.Auth.Verify)
	if rt.Development {
		authGroup.POST("/login", rt.Auth.Login)
	}

	if rt.Metrics != nil {
		router.GET("/metrics", gin.WrapH(rt.Metrics))
	}

	router.NoRoute(NotFound)
}

// NotFound answers unknown routes with a JSON error including the requested path.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, NotFoundResponse{
		Response: apperrors.NewResponse(apperrors.New(apperrors.KindNotFound, MsgRouteNotFound)),
		Path:     c.Request.URL.RequestURI(),
	})
}
