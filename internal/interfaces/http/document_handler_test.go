package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app  *fiber.App
	wh   int64
	item int64
}

// buildTestApp construye la API sobre el store en memoria con una bodega y un artículo.
func buildTestApp(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	wh := &entity.Warehouse{Code: "B01", Name: "Principal"}
	require.NoError(t, store.Warehouses().Create(ctx, wh))
	item := &entity.Item{Code: "A-001", Name: "Tornillo", Price: decimal.RequireFromString("2.50")}
	require.NoError(t, store.Items().Create(ctx, item))

	uc := inventory.NewDocumentUseCase(inventory.Deps{
		TxRunner:      store,
		DocumentRepo:  store.Documents(),
		StockRepo:     store.Stock(),
		MovementRepo:  store.Movements(),
		WarehouseRepo: store.Warehouses(),
		ItemRepo:      store.Items(),
		SequenceRepo:  store.Sequences(),
		RateRepo:      store.ExchangeRate(),
	})
	app := fiber.New()
	catalogUC := inventory.NewCatalogUseCase(store.Warehouses(), store.Items())
	apphttp.Router(app, apphttp.RouterDeps{DocumentUC: uc, CatalogUC: catalogUC})
	return &testAPI{app: app, wh: wh.ID, item: item.ID}
}

// doJSON lanza una petición con body JSON y decodifica la respuesta en out (si no es nil).
func doJSON(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testAPI) createDoc(t *testing.T, kind, amount string) dto.DocumentResponse {
	t.Helper()
	var doc dto.DocumentResponse
	status := doJSON(t, a.app, http.MethodPost, "/api/documents", fiber.Map{
		"kind":         kind,
		"warehouse_id": a.wh,
		"items":        []fiber.Map{{"item_id": a.item, "amount": amount}},
	}, &doc)
	require.Equal(t, fiber.StatusCreated, status)
	return doc
}

func path(id int64, suffix string) string {
	return "/api/documents/" + strconv.FormatInt(id, 10) + suffix
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestDocuments_CrearYAplicarEntrada(t *testing.T) {
	api := buildTestApp(t)
	doc := api.createDoc(t, "entry", "10")
	assert.Equal(t, "EN-00000001", doc.Code)
	assert.Equal(t, "pending", doc.Status)

	var applied dto.DocumentResponse
	status := doJSON(t, api.app, http.MethodPost, path(doc.ID, "/transition"), fiber.Map{"status": "applied"}, &applied)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "applied", applied.Status)
	assert.NotNil(t, applied.AppliedAt)

	var summary dto.StockSummaryResponse
	status = doJSON(t, api.app, http.MethodGet, "/api/stock?item_id=1", nil, &summary)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(10)))
}

func TestDocuments_StockInsuficienteDevuelve409(t *testing.T) {
	api := buildTestApp(t)
	entry := api.createDoc(t, "entry", "30")
	require.Equal(t, fiber.StatusOK, doJSON(t, api.app, http.MethodPost, path(entry.ID, "/transition"), fiber.Map{"status": "applied"}, nil))

	inv := api.createDoc(t, "invoice", "50")
	var errResp struct {
		Code    string `json:"code"`
		Details struct {
			Shortages []struct {
				ItemID    int64           `json:"item_id"`
				Requested decimal.Decimal `json:"requested"`
				Available decimal.Decimal `json:"available"`
			} `json:"shortages"`
		} `json:"details"`
	}
	status := doJSON(t, api.app, http.MethodPost, path(inv.ID, "/transition"), fiber.Map{"status": "applied"}, &errResp)
	require.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
	require.Len(t, errResp.Details.Shortages, 1)
	assert.True(t, errResp.Details.Shortages[0].Requested.Equal(decimal.NewFromInt(50)))
	assert.True(t, errResp.Details.Shortages[0].Available.Equal(decimal.NewFromInt(30)))
}

func TestDocuments_TransicionInvalidaDevuelve409(t *testing.T) {
	api := buildTestApp(t)
	doc := api.createDoc(t, "invoice", "1")

	var errResp dto.ErrorResponse
	status := doJSON(t, api.app, http.MethodPost, path(doc.ID, "/transition"), fiber.Map{"status": "pending"}, &errResp)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errResp.Code)
}

func TestDocuments_ErroresDeEntrada(t *testing.T) {
	api := buildTestApp(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
		code   string
	}{
		{"documento inexistente", http.MethodGet, "/api/documents/99", nil, fiber.StatusNotFound, "NOT_FOUND"},
		{"id inválido", http.MethodGet, "/api/documents/abc", nil, fiber.StatusBadRequest, "MISSING_ID"},
		{"tipo desconocido", http.MethodPost, "/api/documents", fiber.Map{"kind": "receipt", "warehouse_id": 1}, fiber.StatusBadRequest, "VALIDATION"},
		{"bodega inexistente", http.MethodPost, "/api/documents", fiber.Map{"kind": "entry", "warehouse_id": 42}, fiber.StatusNotFound, "NOT_FOUND"},
		{"transición sin status", http.MethodPost, "/api/documents/1/transition", fiber.Map{}, fiber.StatusBadRequest, "VALIDATION"},
		{"cantidad fuera de NUMERIC(14,2)", http.MethodPost, "/api/documents", fiber.Map{"kind": "entry", "warehouse_id": 1, "items": []fiber.Map{{"item_id": 1, "amount": "1000000000000"}}}, fiber.StatusBadRequest, "VALIDATION"},
		{"stock sin filtro", http.MethodGet, "/api/stock", nil, fiber.StatusBadRequest, "VALIDATION"},
		{"movimientos con fecha inválida", http.MethodGet, "/api/stock/movements?from=ayer", nil, fiber.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp dto.ErrorResponse
			status := doJSON(t, api.app, tt.method, tt.path, tt.body, &errResp)
			assert.Equal(t, tt.want, status)
			assert.Equal(t, tt.code, errResp.Code)
		})
	}
}

func TestExchangeRate_ConsultarYActualizar(t *testing.T) {
	api := buildTestApp(t)

	var rate dto.ExchangeRateResponse
	require.Equal(t, fiber.StatusOK, doJSON(t, api.app, http.MethodGet, "/api/exchange-rate", nil, &rate))
	assert.Equal(t, "1.0000", rate.Rate.StringFixed(4))

	var errResp dto.ErrorResponse
	status := doJSON(t, api.app, http.MethodPut, "/api/exchange-rate", fiber.Map{"rate": "0"}, &errResp)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_RATE", errResp.Code)

	require.Equal(t, fiber.StatusOK, doJSON(t, api.app, http.MethodPut, "/api/exchange-rate", fiber.Map{"rate": "4100.5"}, &rate))
	assert.Equal(t, "4100.5000", rate.Rate.StringFixed(4))

	inv := api.createDoc(t, "invoice", "2")
	require.NotNil(t, inv.Totals)
	assert.True(t, inv.Totals.ConvertedTotal.Equal(decimal.RequireFromString("20502.5")))
}

func TestMovements_ListaPorArticulo(t *testing.T) {
	api := buildTestApp(t)
	entry := api.createDoc(t, "entry", "5")
	require.Equal(t, fiber.StatusOK, doJSON(t, api.app, http.MethodPost, path(entry.ID, "/transition"), fiber.Map{"status": "applied"}, nil))

	var list dto.StockMovementListResponse
	status := doJSON(t, api.app, http.MethodGet, "/api/stock/movements?item_id=1&from=2000-01-01", nil, &list)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list.Items, 1)
	assert.Equal(t, entry.Code, list.Items[0].DocumentCode)
	assert.True(t, list.Items[0].BalanceAfter.Equal(decimal.NewFromInt(5)))
}

func TestHealth(t *testing.T) {
	api := buildTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
