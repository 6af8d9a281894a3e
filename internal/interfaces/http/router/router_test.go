package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/feedlot/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func text(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func TestRouter_BasePath(t *testing.T) {
	assert.Equal(t, "/api/v1", NewRouter(gin.New()).BasePath())
	assert.Equal(t, "/api/v2", NewRouter(gin.New(), WithAPIVersion("v2")).BasePath())
}

func TestRouter_SetupMountsGroups(t *testing.T) {
	engine := gin.New()
	lots := NewDomainGroup("lots", "/lots").
		GET("", text("list")).
		GET("/:id", text("one")).
		POST("/:id/sale", text("sold"))
	costing := NewDomainGroup("costing", "/costing")
	costing.Group("indirect", "/indirect").
		DELETE("/:id", text("gone"))

	routes := NewRouter(engine).Register(lots, costing).Setup()
	assert.ElementsMatch(t, []RouteInfo{
		{http.MethodGet, "/api/v1/lots"},
		{http.MethodGet, "/api/v1/lots/:id"},
		{http.MethodPost, "/api/v1/lots/:id/sale"},
		{http.MethodDelete, "/api/v1/costing/indirect/:id"},
	}, routes)

	tests := []struct {
		method string
		target string
		code   int
		body   string
	}{
		{http.MethodGet, "/api/v1/lots", http.StatusOK, "list"},
		{http.MethodGet, "/api/v1/lots/42", http.StatusOK, "one"},
		{http.MethodPost, "/api/v1/lots/42/sale", http.StatusOK, "sold"},
		{http.MethodDelete, "/api/v1/costing/indirect/7", http.StatusOK, "gone"},
		{http.MethodGet, "/api/v2/lots", http.StatusNotFound, ""},
		{http.MethodGet, "/lots", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := serve(engine, tt.method, tt.target)
			assert.Equal(t, tt.code, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestDomainGroup_MiddlewareReachesSubgroups(t *testing.T) {
	engine := gin.New()
	var seen []string
	mark := func(tag string) gin.HandlerFunc {
		return func(c *gin.Context) {
			seen = append(seen, tag)
			c.Next()
		}
	}

	finance := NewDomainGroup("finance", "/finance").Use(mark("finance"))
	finance.GET("/accounts", text("accounts"))
	finance.Group("reconciliations", "/reconciliations").
		Use(mark("reconciliations")).
		GET("/schedule", text("schedule"))
	NewRouter(engine).Register(finance).Setup()

	require.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/finance/accounts").Code)
	assert.Equal(t, []string{"finance"}, seen)

	seen = nil
	w := serve(engine, http.MethodGet, "/api/v1/finance/reconciliations/schedule")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "schedule", w.Body.String())
	assert.Equal(t, []string{"finance", "reconciliations"}, seen)
}

func TestDomainGroup_Paths(t *testing.T) {
	g := NewDomainGroup("reports", "/reports").
		POST("/income-statements", text("")).
		Handle(http.MethodPatch, "/income-statements/:id", text(""))
	g.Group("exports", "/exports").GET("", text(""))

	assert.Equal(t, "reports", g.Name())
	assert.Equal(t, "/reports", g.Prefix())
	assert.Equal(t, []RouteInfo{
		{http.MethodPost, "/reports/income-statements"},
		{http.MethodPatch, "/reports/income-statements/:id"},
		{http.MethodGet, "/reports/exports"},
	}, g.Paths())
}

func TestRoutes_Table(t *testing.T) {
	groups := Routes(Handlers{
		System:         handler.NewSystemHandler("feedlot", "test", nil),
		Lots:           handler.NewLotHandler(nil),
		Allocations:    handler.NewAllocationHandler(nil),
		IndirectCosts:  handler.NewIndirectCostHandler(nil),
		Reconciliation: handler.NewReconciliationHandler(nil, nil),
		Reports:        handler.NewReportHandler(nil),
	})

	byGroup := make(map[string][]RouteInfo)
	for _, registrar := range groups {
		g, ok := registrar.(*DomainGroup)
		require.True(t, ok)
		byGroup[g.Name()] = g.Paths()
	}

	assert.Equal(t, []RouteInfo{
		{http.MethodGet, "/system/ping"},
		{http.MethodGet, "/system/info"},
		{http.MethodGet, "/system/ready"},
	}, byGroup["system"])
	assert.Equal(t, []RouteInfo{
		{http.MethodPost, "/costing/allocations"},
		{http.MethodGet, "/costing/allocations/:id"},
		{http.MethodPost, "/costing/lots/:id/pens"},
		{http.MethodDelete, "/costing/links/:id"},
		{http.MethodPost, "/costing/lots/:id/mortality"},
		{http.MethodPost, "/costing/lots/:id/weight-loss"},
		{http.MethodPost, "/costing/indirect"},
		{http.MethodGet, "/costing/indirect"},
		{http.MethodGet, "/costing/indirect/summary"},
		{http.MethodGet, "/costing/indirect/:id"},
		{http.MethodPost, "/costing/indirect/:id/approve"},
		{http.MethodPost, "/costing/indirect/:id/apply"},
		{http.MethodPost, "/costing/indirect/:id/discard"},
	}, byGroup["costing"])
	assert.Len(t, byGroup["finance"], 7)
	assert.Len(t, byGroup["reports"], 3)
	assert.Len(t, byGroup["lots"], 4)
	assert.Len(t, byGroup["pens"], 2)

	// every route mounts on a real engine without conflicts
	engine := gin.New()
	routes := NewRouter(engine).Register(groups...).Setup()
	assert.Len(t, routes, 3+4+2+13+7+3)
}
