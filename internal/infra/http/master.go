package http

import (
	"net/http"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/purchases"
	"github.com/Spok95/block-plant/internal/domain/sales"
	"github.com/Spok95/block-plant/internal/domain/workers"
	"github.com/Spok95/block-plant/internal/infra/report"
	"github.com/Spok95/block-plant/internal/ledger"
	"github.com/shopspring/decimal"
)

/* Materials */

type materialRequest struct {
	Name          string          `json:"name" validate:"required,max=120"`
	Unit          string          `json:"unit" validate:"required,oneof=KG LITRE PCS"`
	MinStockAlert decimal.Decimal `json:"min_stock_alert" validate:"gte=0"`
	OpeningStock  decimal.Decimal `json:"opening_stock" validate:"gte=0"`
	OpeningPrice  decimal.Decimal `json:"opening_price" validate:"gte=0"`
}

func (a *API) createMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	m, err := a.eng.CreateMaterial(r.Context(), ledger.MaterialInput{
		Name:          req.Name,
		Unit:          materials.Unit(req.Unit),
		MinStockAlert: req.MinStockAlert,
		OpeningStock:  req.OpeningStock,
		OpeningPrice:  req.OpeningPrice,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) listMaterials(w http.ResponseWriter, r *http.Request) {
	ms, err := a.eng.ListMaterials(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (a *API) lowStock(w http.ResponseWriter, r *http.Request) {
	ms, err := a.eng.LowStockMaterials(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (a *API) exportMaterials(w http.ResponseWriter, r *http.Request) {
	ms, err := a.eng.ListMaterials(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data, err := report.MaterialsXLSX(ms)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeXLSX(w, "materials.xlsx", data)
}

/* Block types */

type formulationItem struct {
	MaterialID int64           `json:"material_id" validate:"gt=0"`
	KgPerUnit  decimal.Decimal `json:"kg_per_unit" validate:"gt=0"`
}

type blockTypeRequest struct {
	Name       string            `json:"name" validate:"required,max=120"`
	Dimensions string            `json:"dimensions" validate:"max=60"`
	Items      []formulationItem `json:"items" validate:"required,min=1,dive"`
}

type formulationRequest struct {
	Items []formulationItem `json:"items" validate:"required,min=1,dive"`
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func toItems(in []formulationItem) []catalog.FormulationItem {
	out := make([]catalog.FormulationItem, 0, len(in))
	for _, it := range in {
		out = append(out, catalog.FormulationItem{MaterialID: it.MaterialID, KgPerUnit: it.KgPerUnit})
	}
	return out
}

func (a *API) createBlockType(w http.ResponseWriter, r *http.Request) {
	var req blockTypeRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.eng.CreateBlockType(r.Context(), ledger.BlockTypeInput{
		Name:       req.Name,
		Dimensions: req.Dimensions,
		Items:      toItems(req.Items),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) listBlockTypes(w http.ResponseWriter, r *http.Request) {
	bts, err := a.eng.ListBlockTypes(r.Context(), queryBool(r, "active"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bts)
}

func (a *API) setBlockTypeActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req activeRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	bt, err := a.eng.SetBlockTypeActive(r.Context(), id, *req.Active)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bt)
}

func (a *API) getFormulation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	f, err := a.eng.ActiveFormulation(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (a *API) updateFormulation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req formulationRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	f, err := a.eng.UpdateFormulation(r.Context(), id, toItems(req.Items))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

/* Workers */

type workerRequest struct {
	DNI       string `json:"dni" validate:"required,max=20"`
	FirstName string `json:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" validate:"required,max=80"`
	Role      string `json:"role" validate:"omitempty,oneof=operator driver supervisor"`
}

func (a *API) createWorker(w http.ResponseWriter, r *http.Request) {
	var req workerRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	wk, err := a.eng.CreateWorker(r.Context(), ledger.WorkerInput{
		DNI:       req.DNI,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      workers.Role(req.Role),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wk)
}

func (a *API) listWorkers(w http.ResponseWriter, r *http.Request) {
	ws, err := a.eng.ListWorkers(r.Context(), queryBool(r, "active"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (a *API) setWorkerActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req activeRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	wk, err := a.eng.SetWorkerActive(r.Context(), id, *req.Active)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wk)
}

/* Suppliers and clients */

type supplierRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	CIF         string `json:"cif" validate:"max=20"`
	ContactInfo string `json:"contact_info" validate:"max=255"`
}

type clientRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	CIF     string `json:"cif" validate:"max=20"`
	Phone   string `json:"phone" validate:"max=30"`
	Address string `json:"address" validate:"max=255"`
}

func (a *API) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	s, err := a.eng.CreateSupplier(r.Context(), purchases.Supplier{Name: req.Name, CIF: req.CIF, ContactInfo: req.ContactInfo})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (a *API) listSuppliers(w http.ResponseWriter, r *http.Request) {
	ss, err := a.eng.ListSuppliers(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func (a *API) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.eng.CreateClient(r.Context(), sales.Client{Name: req.Name, CIF: req.CIF, Phone: req.Phone, Address: req.Address})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) listClients(w http.ResponseWriter, r *http.Request) {
	cs, err := a.eng.ListClients(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}
