package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Spok95/block-plant/internal/domain/production"
	"github.com/Spok95/block-plant/internal/infra/report"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/shopspring/decimal"
)

const maxUpload = 10 << 20

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.eng.Dashboard(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

/* Purchases */

type purchaseRequest struct {
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	SupplierID    int64           `json:"supplier_id" validate:"gt=0"`
	MaterialID    int64           `json:"material_id" validate:"gt=0"`
	InvoiceNumber string          `json:"invoice_number" validate:"required,max=60"`
	Quantity      decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

func (a *API) receivePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.eng.ReceivePurchase(r.Context(), ledger.PurchaseInput{
		Date:          a.parseDate(req.Date),
		SupplierID:    req.SupplierID,
		MaterialID:    req.MaterialID,
		InvoiceNumber: req.InvoiceNumber,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) listPurchases(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ps, err := a.eng.ListPurchases(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

type importResult struct {
	Booked int `json:"booked"`
}

// importPurchases takes the spreadsheet in the "file" form field.
func (a *API) importPurchases(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		a.fail(w, r, badRequest(fmt.Sprintf("invalid upload: %v", err)))
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		a.fail(w, r, badRequest("file field is required"))
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxUpload))
	if err != nil {
		a.fail(w, r, badRequest(err.Error()))
		return
	}
	n, err := report.ImportPurchases(r.Context(), a.eng, data)
	if err != nil {
		var re *report.RowError
		if errors.As(err, &re) {
			a.log.Info("purchase import stopped", "row", re.Row, "booked", n, "err", re.Err)
		}
		ae := toAPIError(err)
		if ae.Details == nil {
			ae.Details = map[string]string{}
		}
		ae.Details["booked"] = fmt.Sprint(n)
		writeJSON(w, ae.status, ae)
		return
	}
	writeJSON(w, http.StatusOK, importResult{Booked: n})
}

func (a *API) purchaseTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := report.PurchaseTemplateXLSX()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeXLSX(w, "purchases.xlsx", data)
}

/* Production */

type workerOutput struct {
	WorkerID int64 `json:"worker_id" validate:"gt=0"`
	Units    int64 `json:"units" validate:"gt=0,lte=1000000000"`
}

type batchRequest struct {
	Date        string         `json:"date" validate:"required,datetime=2006-01-02"`
	Shift       string         `json:"shift" validate:"required,oneof=MORNING AFTERNOON NIGHT"`
	BlockTypeID int64          `json:"block_type_id" validate:"gt=0"`
	CreatedByID int64          `json:"created_by_id" validate:"gte=0"`
	Workers     []workerOutput `json:"workers" validate:"required,min=1,dive"`
}

func (a *API) createBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]production.WorkerOutput, 0, len(req.Workers))
	for _, wo := range req.Workers {
		out = append(out, production.WorkerOutput{WorkerID: wo.WorkerID, Units: wo.Units})
	}
	b, err := a.eng.CreateProductionBatch(r.Context(), ledger.ProductionInput{
		Date:        a.parseDate(req.Date),
		Shift:       production.Shift(req.Shift),
		BlockTypeID: req.BlockTypeID,
		CreatedByID: req.CreatedByID,
		Workers:     out,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) listBatches(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	bs, err := a.eng.ListBatches(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

/* Orders */

type orderLine struct {
	BlockTypeID int64           `json:"block_type_id" validate:"gt=0"`
	Quantity    int64           `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

type orderRequest struct {
	Date        string      `json:"date" validate:"required,datetime=2006-01-02"`
	ClientID    int64       `json:"client_id" validate:"gt=0"`
	CreatedByID int64       `json:"created_by_id" validate:"gte=0"`
	Lines       []orderLine `json:"lines" validate:"required,min=1,dive"`
}

type dispatchRequest struct {
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	WorkerID      int64           `json:"worker_id" validate:"gt=0"`
	GrossWeightKg decimal.Decimal `json:"gross_weight_kg" validate:"gt=0"`
	TareWeightKg  decimal.Decimal `json:"tare_weight_kg" validate:"gt=0"`
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	lines := make([]ledger.OrderLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, ledger.OrderLineInput{BlockTypeID: l.BlockTypeID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	o, err := a.eng.CreateOrder(r.Context(), ledger.OrderInput{
		Date:        a.parseDate(req.Date),
		ClientID:    req.ClientID,
		CreatedByID: req.CreatedByID,
		Lines:       lines,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	orders, err := a.eng.ListOrders(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	o, err := a.eng.GetOrder(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *API) dispatchOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req dispatchRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	o, err := a.eng.DispatchOrder(r.Context(), ledger.DispatchInput{
		OrderID:       id,
		WorkerID:      req.WorkerID,
		Date:          a.parseDate(req.Date),
		GrossWeightKg: req.GrossWeightKg,
		TareWeightKg:  req.TareWeightKg,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

/* Yard */

type adjustmentRequest struct {
	BlockTypeID int64  `json:"block_type_id" validate:"gt=0"`
	Delta       int64  `json:"delta" validate:"ne=0"`
	Reason      string `json:"reason" validate:"required,max=255"`
}

func (a *API) adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	m, err := a.eng.AdjustYardStock(r.Context(), ledger.AdjustmentInput{
		BlockTypeID: req.BlockTypeID,
		Delta:       req.Delta,
		Reason:      req.Reason,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) yardStock(w http.ResponseWriter, r *http.Request) {
	st, err := a.eng.YardStock(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) exportYardStock(w http.ResponseWriter, r *http.Request) {
	st, err := a.eng.YardStock(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data, err := report.YardStockXLSX(st)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeXLSX(w, "yard_stock.xlsx", data)
}

func (a *API) movements(w http.ResponseWriter, r *http.Request) {
	bt, err := queryInt(r, "block_type_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	mv, err := a.eng.ListMovements(r.Context(), int64(bt), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

func (a *API) exportMovements(w http.ResponseWriter, r *http.Request) {
	bt, err := queryInt(r, "block_type_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	mv, err := a.eng.ListMovements(r.Context(), int64(bt), 0)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data, err := report.MovementsXLSX(mv)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeXLSX(w, "movements.xlsx", data)
}

func (a *API) reconcile(w http.ResponseWriter, r *http.Request) {
	ms, err := a.eng.Reconcile(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}
