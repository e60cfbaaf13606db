package restapi

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// HTTPVerb enumerates supported HTTP operations.
type HTTPVerb int

const (
	// Unknown represents an unspecified HTTP verb.
	Unknown HTTPVerb = iota
	// GET lists or retrieves resources.
	GET
	// GET_ONE retrieves a single resource.
	GET_ONE
	// DELETE removes resources.
	DELETE
	// POST creates resources.
	POST
	// PUT replaces resources.
	PUT
	// PATCH partially updates resources.
	PATCH
)

// RestMethod describes a REST route handler.
type RestMethod struct {
	Verb    HTTPVerb
	Path    string
	Handler func(c *gin.Context)
}

// methods keeps the routes of one router in registration order.
type methods struct {
	keys  map[string]struct{}
	items []RestMethod
}

// RegisterMethod builds a RestMethod and registers it using Register.
func (ms *methods) RegisterMethod(verb HTTPVerb, path string, h func(c *gin.Context)) error {
	return ms.Register(RestMethod{
		Verb:    verb,
		Path:    path,
		Handler: h,
	})
}

// Register adds a RestMethod, preventing duplicates.
func (ms *methods) Register(m RestMethod) error {
	key := fmt.Sprintf("%d_%s", m.Verb, m.Path)
	if ms.keys == nil {
		ms.keys = make(map[string]struct{})
	}
	if _, exists := ms.keys[key]; exists {
		return fmt.Errorf("can't add %s, an existing handler in REST method map exists", key)
	}
	ms.keys[key] = struct{}{}
	ms.items = append(ms.items, m)
	return nil
}

// mount adds every method to group, each behind wrap.
func (ms *methods) mount(group *gin.RouterGroup, wrap func(gin.HandlerFunc) gin.HandlerFunc) {
	for _, rm := range ms.items {
		switch rm.Verb {
		case GET:
			fallthrough
		case GET_ONE:
			group.GET(rm.Path, wrap(rm.Handler))
		case DELETE:
			group.DELETE(rm.Path, wrap(rm.Handler))
		case POST:
			group.POST(rm.Path, wrap(rm.Handler))
		case PUT:
			group.PUT(rm.Path, wrap(rm.Handler))
		case PATCH:
			group.PATCH(rm.Path, wrap(rm.Handler))
		default:
			panic(fmt.Sprintf("HTTP verb %d not supported", rm.Verb))
		}
	}
}
