package memstore

import (
	"maps"
	"slices"

	"github.com/Spok95/block-plant/internal/domain/catalog"
	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/production"
	"github.com/Spok95/block-plant/internal/domain/purchases"
	"github.com/Spok95/block-plant/internal/domain/sales"
	"github.com/Spok95/block-plant/internal/domain/workers"
	"github.com/Spok95/block-plant/internal/domain/yard"
)

// state is the whole database. Nested slices are never mutated in place,
// so clone only has to copy the top-level containers.
type state struct {
	seq map[string]int64

	materials    map[int64]materials.RawMaterial
	blockTypes   map[int64]catalog.BlockType
	formulations []catalog.Formulation
	yard         map[int64]yard.Stock
	movements    []yard.Movement
	batches      []production.Batch
	suppliers    map[int64]purchases.Supplier
	purchases    []purchases.Purchase
	clients      map[int64]sales.Client
	orders       map[int64]sales.Order
	dispatches   map[int64]sales.Dispatch // by order id
	workers      map[int64]workers.Worker
	codes        map[string]int
}

func newState() *state {
	return &state{
		seq:        map[string]int64{},
		materials:  map[int64]materials.RawMaterial{},
		blockTypes: map[int64]catalog.BlockType{},
		yard:       map[int64]yard.Stock{},
		suppliers:  map[int64]purchases.Supplier{},
		clients:    map[int64]sales.Client{},
		orders:     map[int64]sales.Order{},
		dispatches: map[int64]sales.Dispatch{},
		workers:    map[int64]workers.Worker{},
		codes:      map[string]int{},
	}
}

func (s *state) clone() *state {
	return &state{
		seq:          maps.Clone(s.seq),
		materials:    maps.Clone(s.materials),
		blockTypes:   maps.Clone(s.blockTypes),
		formulations: slices.Clone(s.formulations),
		yard:         maps.Clone(s.yard),
		movements:    slices.Clone(s.movements),
		batches:      slices.Clone(s.batches),
		suppliers:    maps.Clone(s.suppliers),
		purchases:    slices.Clone(s.purchases),
		clients:      maps.Clone(s.clients),
		orders:       maps.Clone(s.orders),
		dispatches:   maps.Clone(s.dispatches),
		workers:      maps.Clone(s.workers),
		codes:        maps.Clone(s.codes),
	}
}

func (s *state) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}
