package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/block-plant/internal/infra/metrics"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/go-playground/validator/v10"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// API exposes the ledger over JSON.
type API struct {
	eng      *ledger.Engine
	metrics  *metrics.Metrics
	loc      *time.Location
	log      *slog.Logger
	validate *validator.Validate
}

// NewAPI builds the handler tree. m may be nil, then /metrics is not served.
func NewAPI(eng *ledger.Engine, m *metrics.Metrics, loc *time.Location, log *slog.Logger) *API {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &API{eng: eng, metrics: m, loc: loc, log: log, validate: newValidator()}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if a.metrics != nil {
		mux.Handle("GET /metrics", a.metrics.Handler())
	}

	mux.HandleFunc("GET /api/dashboard", a.dashboard)

	/* Master data */
	mux.HandleFunc("GET /api/materials", a.listMaterials)
	mux.HandleFunc("POST /api/materials", a.createMaterial)
	mux.HandleFunc("GET /api/materials/low", a.lowStock)
	mux.HandleFunc("GET /api/materials/export", a.exportMaterials)

	mux.HandleFunc("GET /api/block-types", a.listBlockTypes)
	mux.HandleFunc("POST /api/block-types", a.createBlockType)
	mux.HandleFunc("PUT /api/block-types/{id}/active", a.setBlockTypeActive)
	mux.HandleFunc("GET /api/block-types/{id}/formulation", a.getFormulation)
	mux.HandleFunc("PUT /api/block-types/{id}/formulation", a.updateFormulation)

	mux.HandleFunc("GET /api/workers", a.listWorkers)
	mux.HandleFunc("POST /api/workers", a.createWorker)
	mux.HandleFunc("PUT /api/workers/{id}/active", a.setWorkerActive)

	mux.HandleFunc("GET /api/suppliers", a.listSuppliers)
	mux.HandleFunc("POST /api/suppliers", a.createSupplier)
	mux.HandleFunc("GET /api/clients", a.listClients)
	mux.HandleFunc("POST /api/clients", a.createClient)

	/* Ledger */
	mux.HandleFunc("GET /api/purchases", a.listPurchases)
	mux.HandleFunc("POST /api/purchases", a.receivePurchase)
	mux.HandleFunc("POST /api/purchases/import", a.importPurchases)
	mux.HandleFunc("GET /api/purchases/template", a.purchaseTemplate)

	mux.HandleFunc("GET /api/production", a.listBatches)
	mux.HandleFunc("POST /api/production", a.createBatch)

	mux.HandleFunc("GET /api/orders", a.listOrders)
	mux.HandleFunc("POST /api/orders", a.createOrder)
	mux.HandleFunc("GET /api/orders/{id}", a.getOrder)
	mux.HandleFunc("POST /api/orders/{id}/dispatch", a.dispatchOrder)

	mux.HandleFunc("POST /api/adjustments", a.adjust)

	/* Yard */
	mux.HandleFunc("GET /api/yard/stock", a.yardStock)
	mux.HandleFunc("GET /api/yard/stock/export", a.exportYardStock)
	mux.HandleFunc("GET /api/yard/movements", a.movements)
	mux.HandleFunc("GET /api/yard/movements/export", a.exportMovements)
	mux.HandleFunc("GET /api/yard/reconcile", a.reconcile)

	var h http.Handler = mux
	if a.metrics != nil {
		h = a.metrics.Instrument(h)
	}
	return recoverPanics(a.log, requestID(logRequests(a.log, h)))
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("id must be a positive integer")
	}
	return id, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, badRequest(key + " must be a non-negative integer")
	}
	return n, nil
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

func writeXLSX(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
