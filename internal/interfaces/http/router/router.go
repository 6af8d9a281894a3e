// Package router mounts the feedlot API groups on a gin engine.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes on a parent group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouteInfo names one mounted route
type RouteInfo struct {
	Method string
	Path   string
}

// Router mounts registered groups under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the base path
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a router on engine, serving /api/v1 unless configured
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BasePath returns the prefix every group is mounted under
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Register queues groups for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts the queued groups and returns every route the engine serves
func (r *Router) Setup() []RouteInfo {
	api := r.engine.Group(r.BasePath())
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	mounted := r.engine.Routes()
	infos := make([]RouteInfo, 0, len(mounted))
	for _, ri := range mounted {
		infos = append(infos, RouteInfo{Method: ri.Method, Path: ri.Path})
	}
	return infos
}

// DomainGroup collects the routes of one API area under a shared prefix.
// Nothing touches gin until RegisterRoutes runs.
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates an empty group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Name() string   { return dg.name }
func (dg *DomainGroup) Prefix() string { return dg.prefix }

// Use adds middleware that runs before every route of the group and its subgroups
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle adds a route with an arbitrary method
func (dg *DomainGroup) Handle(method, relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: relativePath, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, relativePath, handlers...)
}

func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, relativePath, handlers...)
}

func (dg *DomainGroup) DELETE(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, relativePath, handlers...)
}

// Group adds a nested group and returns it for chaining its routes
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// Paths lists the group's routes relative to its parent, subgroups included
func (dg *DomainGroup) Paths() []RouteInfo {
	var infos []RouteInfo
	for _, route := range dg.routes {
		infos = append(infos, RouteInfo{Method: route.method, Path: joinPath(dg.prefix, route.path)})
	}
	for _, sub := range dg.subgroups {
		for _, ri := range sub.Paths() {
			infos = append(infos, RouteInfo{Method: ri.Method, Path: joinPath(dg.prefix, ri.Path)})
		}
	}
	return infos
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, sub := range dg.subgroups {
		sub.RegisterRoutes(group)
	}
}

func joinPath(prefix, relative string) string {
	if relative == "" {
		return prefix
	}
	return path.Join(prefix, relative)
}
