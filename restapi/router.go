// Package restapi surfaces a node storage over HTTP for administration: node CRUD, CEL filtered
// scans, flush, stats and feature type metadata.
package restapi

import (
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"     // swagger embed files
	ginSwagger "github.com/swaggo/gin-swagger" // gin-swagger middleware

	"github.com/sharedcode/nodestore"
	"github.com/sharedcode/nodestore/restapi/docs"
)

// Options configures Router.
type Options struct {
	// Okta enables bearer token verification; nil serves every request.
	Okta *OktaOptions
}

// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// Router builds the gin engine serving storage under /api/v1, plus the swagger UI at /swagger.
func Router(storage nodestore.Storage, opts Options) *gin.Engine {
	wrap := func(h gin.HandlerFunc) gin.HandlerFunc { return h }
	if opts.Okta != nil {
		wrap = newVerifier(opts.Okta).wrap
	}

	router := gin.Default()
	docs.SwaggerInfo.BasePath = "/api/v1"

	a := &nodesAPI{storage: storage}
	var ms methods
	ms.RegisterMethod(GET, "/nodes", a.ListNodes)
	ms.RegisterMethod(GET_ONE, "/nodes/:id", a.GetNode)
	ms.RegisterMethod(PUT, "/nodes/:id", a.PutNode)
	ms.RegisterMethod(DELETE, "/nodes/:id", a.DeleteNode)
	ms.RegisterMethod(POST, "/flush", a.Flush)
	ms.RegisterMethod(GET, "/stats", a.Stats)
	ms.RegisterMethod(GET, "/feature-types", a.GetFeatureTypes)
	ms.RegisterMethod(POST, "/feature-types", a.AddFeatureType)

	v1 := router.Group("/api/v1")
	ms.mount(v1, wrap)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	return router
}
