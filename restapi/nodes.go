package restapi

import (
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharedcode/nodestore"
	"github.com/sharedcode/nodestore/cel"
)

const defaultScanLimit = 100

type nodesAPI struct {
	storage nodestore.Storage
}

// errorStatus maps storage errors to HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, nodestore.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, nodestore.ErrDisposed):
		return http.StatusServiceUnavailable
	}
	switch nodestore.CodeOf(err) {
	case nodestore.InvalidArgument, nodestore.DecodeFailure:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.IndentedJSON(status, gin.H{"message": err.Error()})
}

func parseID(c *gin.Context) (nodestore.NodeID, bool) {
	id, err := nodestore.ParseNodeID(c.Param("id"))
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("invalid node id %q: %w", c.Param("id"), err))
		return nodestore.NilNodeID, false
	}
	return id, true
}

// GetNode godoc
// @Summary GetNode returns the node with the given id.
// @Schemes
// @Description GetNode responds with the node as JSON, byte fields base64 encoded.
// @Tags Nodes
// @Produce json
// @Param			id	path		string		true	"Node id (UUID)"
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Success 200 {object} restapi.Node
// @Router /nodes/{id} [get]
// @Security Bearer
func (a *nodesAPI) GetNode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	n, err := a.storage.Get(c, id)
	if err != nil {
		abort(c, errorStatus(err), err)
		return
	}
	if n == nil {
		abort(c, http.StatusNotFound, nodestore.NodeNotFound(id))
		return
	}
	c.IndentedJSON(http.StatusOK, toNode(n))
}

// PutNode godoc
// @Summary PutNode stores a node under the given id, replacing any previous version.
// @Schemes
// @Tags Nodes
// @Accept json
// @Produce json
// @Param			id	path		string		true	"Node id (UUID)"
// @Param			node	body		restapi.Node	true	"Node content; its id, when set, must match the path"
// @Failure 400 {object} map[string]any
// @Success 200 {object} restapi.Node
// @Router /nodes/{id} [put]
// @Security Bearer
func (a *nodesAPI) PutNode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body Node
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if body.ID != "" && body.ID != id.String() {
		abort(c, http.StatusBadRequest, fmt.Errorf("body id %s does not match path id %s", body.ID, id))
		return
	}
	n, err := fromNode(id, body)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := a.storage.Put(c, n); err != nil {
		abort(c, errorStatus(err), err)
		return
	}
	c.IndentedJSON(http.StatusOK, toNode(n))
}

// DeleteNode godoc
// @Summary DeleteNode removes the node with the given id.
// @Schemes
// @Tags Nodes
// @Param			id	path		string		true	"Node id (UUID)"
// @Failure 404 {object} map[string]any
// @Success 204
// @Router /nodes/{id} [delete]
// @Security Bearer
func (a *nodesAPI) DeleteNode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := a.storage.Remove(c, id); err != nil {
		abort(c, errorStatus(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListNodes godoc
// @Summary ListNodes scans the stored nodes, optionally filtered by a CEL expression over "node".
// @Schemes
// @Description e.g. filter=node.level == 0 && node.payload_size > 1024. Fields: id, level, entries, payload_size, bounds.
// @Tags Nodes
// @Produce json
// @Param			filter	query		string		false	"CEL boolean expression"
// @Param			limit	query		int		false	"Maximum nodes returned, default 100"
// @Failure 400 {object} map[string]any
// @Failure 501 {object} map[string]any
// @Success 200 {object} []restapi.Node
// @Router /nodes [get]
// @Security Bearer
func (a *nodesAPI) ListNodes(c *gin.Context) {
	lister, ok := a.storage.(nodestore.Lister)
	if !ok {
		abort(c, http.StatusNotImplemented, fmt.Errorf("storage can't list its nodes"))
		return
	}
	limit := defaultScanLimit
	if v := c.Query("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			abort(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = l
	}
	var filter *cel.Evaluator
	if expr := c.Query("filter"); expr != "" {
		var err error
		if filter, err = cel.NewEvaluator("filter", expr); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
	}

	ids, err := lister.IDs(c)
	if err != nil {
		abort(c, errorStatus(err), err)
		return
	}
	get := a.storage.Get
	if p, ok := a.storage.(nodestore.Peeker); ok {
		get = p.Peek
	}
	r := make([]Node, 0, min(limit, len(ids)))
	for _, id := range ids {
		if len(r) == limit {
			break
		}
		n, err := get(c, id)
		if err != nil {
			abort(c, errorStatus(err), err)
			return
		}
		if n == nil {
			continue
		}
		if filter != nil {
			match, err := filter.Matches(n)
			if err != nil {
				abort(c, http.StatusBadRequest, err)
				return
			}
			if !match {
				continue
			}
		}
		r = append(r, toNode(n))
	}
	c.IndentedJSON(http.StatusOK, r)
}

// Flush godoc
// @Summary Flush forces buffered nodes and the page index to durable storage.
// @Schemes
// @Tags Storage
// @Success 204
// @Router /flush [post]
// @Security Bearer
func (a *nodesAPI) Flush(c *gin.Context) {
	if err := a.storage.Flush(c); err != nil {
		abort(c, errorStatus(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats godoc
// @Summary Stats returns the storage counters.
// @Schemes
// @Tags Storage
// @Produce json
// @Failure 501 {object} map[string]any
// @Success 200 {object} nodestore.Stats
// @Router /stats [get]
// @Security Bearer
func (a *nodesAPI) Stats(c *gin.Context) {
	sp, ok := a.storage.(nodestore.StatsProvider)
	if !ok {
		abort(c, http.StatusNotImplemented, fmt.Errorf("storage does not report stats"))
		return
	}
	c.IndentedJSON(http.StatusOK, sp.Stats())
}

// GetFeatureTypes godoc
// @Summary GetFeatureTypes lists the feature types recorded by the storage.
// @Schemes
// @Tags Metadata
// @Produce json
// @Success 200 {object} []restapi.FeatureType
// @Router /feature-types [get]
// @Security Bearer
func (a *nodesAPI) GetFeatureTypes(c *gin.Context) {
	fts := a.storage.FeatureTypes()
	r := make([]FeatureType, 0, len(fts))
	for _, ft := range fts {
		r = append(r, toFeatureType(ft))
	}
	c.IndentedJSON(http.StatusOK, r)
}

// AddFeatureType godoc
// @Summary AddFeatureType records a feature type, replacing one with the same qualified name.
// @Schemes
// @Tags Metadata
// @Accept json
// @Produce json
// @Param			featureType	body		restapi.FeatureType	true	"Feature type"
// @Failure 400 {object} map[string]any
// @Success 201 {object} restapi.FeatureType
// @Router /feature-types [post]
// @Security Bearer
func (a *nodesAPI) AddFeatureType(c *gin.Context) {
	var body FeatureType
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	ft := fromFeatureType(body)
	a.storage.AddFeatureType(ft)
	c.IndentedJSON(http.StatusCreated, toFeatureType(ft))
}
