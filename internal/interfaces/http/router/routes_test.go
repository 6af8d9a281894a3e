package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appcosting "github.com/feedlot/backend/internal/application/costing"
	appfinance "github.com/feedlot/backend/internal/application/finance"
	appreport "github.com/feedlot/backend/internal/application/report"
	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/report"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/infrastructure/lock"
	"github.com/feedlot/backend/internal/infrastructure/logger"
	"github.com/feedlot/backend/internal/infrastructure/persistence/memory"
	"github.com/feedlot/backend/internal/interfaces/http/handler"
	"github.com/feedlot/backend/internal/interfaces/http/middleware"
	"github.com/feedlot/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var apiNow = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...shared.DomainEvent) error {
	return nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	store := memory.NewStore()
	locker := lock.NewKeyedLocker()
	events := nopPublisher{}
	clock := shared.ClockFunc(func() time.Time { return apiNow })
	log := zap.NewNop()

	valuation := appcosting.LossValuation{
		CarcassYieldPercent: decimal.NewFromInt(50),
		KgPerArroba:         decimal.NewFromInt(15),
	}
	lots := appcosting.NewLotService(store.CostingScope(), locker, events, log)
	alloc := appcosting.NewAllocationService(store.CostingScope(), costing.NewProportionalAllocator(),
		locker, events, clock, valuation, log)
	indirect := appcosting.NewIndirectCostService(store.CostingScope(), costing.NewRateioEngine(),
		locker, events, clock, log)
	recon := appfinance.NewReconciliationService(store.FinanceScope(), finance.NewMatcher(),
		locker, events, clock, 2, log)
	reports := appreport.NewIncomeStatementService(store.Lots(), store.Links(), store.Losses(),
		store.Accounts(), store.IncomeStatements(), report.NewGenerator(report.WithClock(clock.Now)), log)

	engine := gin.New()
	engine.Use(logger.RequestID(), logger.Recovery(log))
	r := router.NewRouter(engine)
	r.Register(router.Routes(router.Handlers{
		System:         handler.NewSystemHandler("feedlot", "test", nil),
		Lots:           handler.NewLotHandler(lots),
		Allocations:    handler.NewAllocationHandler(alloc),
		IndirectCosts:  handler.NewIndirectCostHandler(indirect),
		Reconciliation: handler.NewReconciliationHandler(recon, nil),
		Reports:        handler.NewReportHandler(reports),
	})...)
	r.Setup()

	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path string, body any) (int, apiResponse) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (a *testAPI) created(path string, body any, out any) {
	a.t.Helper()
	code, resp := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, code, string(resp.Data))
	require.NoError(a.t, json.Unmarshal(resp.Data, out))
}

type idOnly struct {
	ID string `json:"id"`
}

func (a *testAPI) createPen(code string, capacity int) string {
	var pen idOnly
	a.created("/pens", map[string]any{"code": code, "capacity": capacity}, &pen)
	return pen.ID
}

func (a *testAPI) createLot(code string, heads int) string {
	var lot idOnly
	a.created("/lots", map[string]any{
		"code":                 code,
		"entry_date":           "2024-01-02T00:00:00Z",
		"entry_quantity":       heads,
		"entry_weight_kg":      heads * 300,
		"estimated_daily_gain": "1.4",
		"acquisition_cost":     "10000.00",
	}, &lot)
	return lot.ID
}

func (a *testAPI) assign(lotID, penID string, heads int) {
	code, resp := a.do(http.MethodPost, "/costing/lots/"+lotID+"/pens", map[string]any{
		"pen_id":   penID,
		"quantity": heads,
	})
	require.Equal(a.t, http.StatusCreated, code, string(resp.Data))
}

func TestRoutes_SystemPing(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(http.MethodGet, "/system/ping", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), "pong")
}

func TestRoutes_AllocateCost(t *testing.T) {
	api := newTestAPI(t)
	pen := api.createPen("P-01", 200)
	lotA := api.createLot("L-A", 60)
	lotB := api.createLot("L-B", 30)
	api.assign(lotA, pen, 60)
	api.assign(lotB, pen, 30)

	originID := "7b0b1c8e-3f5d-4a43-9d3e-0d6c1f3c9a10"
	body := map[string]any{
		"origin_id": originID,
		"pen_id":    pen,
		"amount":    "900.00",
		"category":  "feed",
	}

	code, resp := api.do(http.MethodPost, "/costing/allocations", body)
	require.Equal(t, http.StatusCreated, code, string(resp.Data))

	var out struct {
		Posted  bool `json:"posted"`
		Records []struct {
			LotID           string          `json:"lot_id"`
			AllocatedAmount decimal.Decimal `json:"allocated_amount"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.True(t, out.Posted)
	require.Len(t, out.Records, 2)
	split := map[string]decimal.Decimal{}
	for _, r := range out.Records {
		split[r.LotID] = r.AllocatedAmount
	}
	assert.True(t, decimal.NewFromInt(600).Equal(split[lotA]), split[lotA].String())
	assert.True(t, decimal.NewFromInt(300).Equal(split[lotB]), split[lotB].String())

	t.Run("the same origin cannot be posted twice", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/costing/allocations", body)
		assert.Equal(t, http.StatusConflict, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_ALREADY_POSTED", resp.Error.Code)
	})

	t.Run("records are listed by origin", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/costing/allocations/"+originID, nil)
		assert.Equal(t, http.StatusOK, code)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 2, resp.Meta.Total)
	})

	t.Run("the lot ledger carries the share", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/lots/"+lotA, nil)
		require.Equal(t, http.StatusOK, code)
		var got struct {
			Lot struct {
				Costs struct {
					Feed decimal.Decimal `json:"feed"`
				} `json:"costs"`
			} `json:"lot"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.True(t, decimal.NewFromInt(600).Equal(got.Lot.Costs.Feed))
	})
}

func TestRoutes_AllocateCost_EmptyPen(t *testing.T) {
	api := newTestAPI(t)
	pen := api.createPen("P-EMPTY", 50)

	code, resp := api.do(http.MethodPost, "/costing/allocations", map[string]any{
		"pen_id":   pen,
		"amount":   "120.00",
		"category": "health",
	})

	require.Equal(t, http.StatusOK, code)
	var out struct {
		Posted bool   `json:"posted"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.False(t, out.Posted)
	assert.Equal(t, "NO_CANDIDATE_POOL", out.Reason)
}

func TestRoutes_ValidationAndNotFound(t *testing.T) {
	api := newTestAPI(t)

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/costing/allocations", map[string]any{
			"pen_id":   "7b0b1c8e-3f5d-4a43-9d3e-0d6c1f3c9a10",
			"amount":   "0",
			"category": "feed",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ERR_VALIDATION", resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("malformed id", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/lots/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "ERR_VALIDATION_FORMAT", resp.Error.Code)
	})

	t.Run("unknown lot", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/lots/7b0b1c8e-3f5d-4a43-9d3e-0d6c1f3c9a10", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
	})
}

func TestRoutes_Reconciliation(t *testing.T) {
	api := newTestAPI(t)

	var entries []idOnly
	api.created("/finance/statements", map[string]any{
		"entries": []map[string]any{{
			"date":             "2024-03-15T00:00:00Z",
			"description":      "PIX FORNECEDOR RACAO",
			"amount":           "-1500.00",
			"bank_account_ref": "001-1234",
		}},
	}, &entries)
	require.Len(t, entries, 1)
	statementID := entries[0].ID

	var account idOnly
	api.created("/finance/accounts", map[string]any{
		"direction":   "payable",
		"description": "Fornecedor racao",
		"amount":      "1500.00",
		"due_date":    "2024-03-15T00:00:00Z",
	}, &account)

	code, resp := api.do(http.MethodGet, "/finance/statements/"+statementID+"/candidates", nil)
	require.Equal(t, http.StatusOK, code)
	var candidates struct {
		Candidates []struct {
			Account idOnly `json:"account"`
			Score   int    `json:"score"`
		} `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &candidates))
	require.NotEmpty(t, candidates.Candidates)
	assert.Equal(t, account.ID, candidates.Candidates[0].Account.ID)

	var record struct {
		ID        string `json:"id"`
		AccountID string `json:"account_id"`
		Status    string `json:"status"`
	}
	api.created("/finance/statements/"+statementID+"/reconcile", map[string]any{
		"account_id": account.ID,
		"created_by": "ana",
	}, &record)
	assert.Equal(t, account.ID, record.AccountID)
	assert.Equal(t, "reconciled", record.Status)

	code, resp = api.do(http.MethodPost, "/finance/statements/"+statementID+"/reconcile", map[string]any{
		"account_id": account.ID,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ERR_ALREADY_RECONCILED", resp.Error.Code)

	code, resp = api.do(http.MethodPost, "/finance/reconciliations/"+record.ID+"/undo", nil)
	require.Equal(t, http.StatusOK, code)
	var undone struct {
		Superseded bool `json:"superseded"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &undone))
	assert.True(t, undone.Superseded)

	code, _ = api.do(http.MethodGet, "/finance/statements/"+statementID+"/candidates", nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = api.do(http.MethodGet, "/finance/reconciliations/schedule", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"enabled":false}`, string(resp.Data))
}

func TestRoutes_IncomeStatement(t *testing.T) {
	api := newTestAPI(t)
	lot := api.createLot("L-DRE", 50)

	var stmt idOnly
	api.created("/reports/income-statements", map[string]any{
		"entity_type":  "lot",
		"entity_id":    lot,
		"period_start": "2024-01-01T00:00:00Z",
		"period_end":   "2024-03-31T00:00:00Z",
		"persist":      true,
	}, &stmt)
	require.NotEmpty(t, stmt.ID)

	code, resp := api.do(http.MethodGet, "/reports/income-statements/"+stmt.ID, nil)
	require.Equal(t, http.StatusOK, code)
	var got struct {
		ID       string   `json:"id"`
		EntityID string   `json:"entity_id"`
		LotIDs   []string `json:"lot_ids"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, stmt.ID, got.ID)
	assert.Equal(t, lot, got.EntityID)
	assert.Equal(t, []string{lot}, got.LotIDs)

	t.Run("compare needs two entities", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/reports/income-statements/compare", map[string]any{
			"entity_type":  "lot",
			"entity_ids":   []string{lot},
			"period_start": "2024-01-01T00:00:00Z",
			"period_end":   "2024-03-31T00:00:00Z",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "ERR_VALIDATION", resp.Error.Code)
	})
}
