package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Spok95/block-plant/internal/domain/materials"
	"github.com/Spok95/block-plant/internal/domain/sales"
	"github.com/Spok95/block-plant/internal/domain/yard"
	"github.com/shopspring/decimal"
)

type OrderLineInput struct {
	BlockTypeID int64
	Quantity    int64
	UnitPrice   decimal.Decimal
}

type OrderInput struct {
	Date        time.Time
	ClientID    int64
	CreatedByID int64
	Lines       []OrderLineInput
}

func (in OrderInput) validate() error {
	if len(in.Lines) == 0 {
		return validation("order needs at least one line")
	}
	for i, l := range in.Lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: line %d", ErrInvalidQuantity, i+1)
		}
		if l.UnitPrice.IsNegative() {
			return validation("line %d: unit price must be >= 0", i+1)
		}
	}
	if in.Date.IsZero() {
		return validation("order date is required")
	}
	return nil
}

// CreateOrder stores a PENDING order. Yard stock is only checked at dispatch.
func (e *Engine) CreateOrder(ctx context.Context, in OrderInput) (*sales.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var o sales.Order
	err := e.run(ctx, "create_order", func(r Repos) error {
		c, err := r.Sales().GetClient(ctx, in.ClientID)
		if err != nil {
			return err
		}
		if c == nil {
			return notFound("client", in.ClientID)
		}

		o = sales.Order{
			ClientID:    c.ID,
			Date:        in.Date,
			Status:      sales.StatusPending,
			TotalAmount: decimal.Zero,
			CreatedByID: in.CreatedByID,
		}
		for _, l := range in.Lines {
			bt, err := r.Catalog().GetBlockType(ctx, l.BlockTypeID)
			if err != nil {
				return err
			}
			if bt == nil {
				return notFound("block type", l.BlockTypeID)
			}
			if !bt.Active {
				return validation("block type %q is inactive", bt.Name)
			}
			price := l.UnitPrice.Round(materials.Scale)
			line := sales.Line{
				BlockTypeID: bt.ID,
				Quantity:    l.Quantity,
				UnitPrice:   price,
				TotalPrice:  price.Mul(decimal.NewFromInt(l.Quantity)).Round(materials.Scale),
			}
			o.TotalAmount = o.TotalAmount.Add(line.TotalPrice)
			o.Lines = append(o.Lines, line)
		}

		if o.Code, err = e.nextCode(ctx, r, orderPrefix, in.Date); err != nil {
			return err
		}
		return r.Sales().CreateOrder(ctx, &o)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("order created", "code", o.Code, "total", o.TotalAmount.String())
	return &o, nil
}

type DispatchInput struct {
	OrderID       int64
	WorkerID      int64
	Date          time.Time
	GrossWeightKg decimal.Decimal
	TareWeightKg  decimal.Decimal
}

// DispatchOrder weighs the truck out and debits the yard for every order line.
// Either all lines leave the yard or none do.
func (e *Engine) DispatchOrder(ctx context.Context, in DispatchInput) (*sales.Order, error) {
	gross := in.GrossWeightKg.Round(materials.Scale)
	tare := in.TareWeightKg.Round(materials.Scale)
	if !tare.IsPositive() {
		return nil, validation("tare weight must be > 0")
	}
	if !gross.GreaterThan(tare) {
		return nil, validation("gross weight %s must exceed tare %s", gross.String(), tare.String())
	}
	date := in.Date
	if date.IsZero() {
		date = e.now()
	}

	var o *sales.Order
	err := e.run(ctx, "dispatch_order", func(r Repos) error {
		var err error
		o, err = r.Sales().GetOrderForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return notFound("order", in.OrderID)
		}
		if o.Status.Fulfilled() {
			return fmt.Errorf("%w: %s is %s", ErrAlreadyDispatched, o.Code, o.Status)
		}

		w, err := r.Workers().Get(ctx, in.WorkerID)
		if err != nil {
			return err
		}
		if w == nil {
			return notFound("worker", in.WorkerID)
		}
		if !w.Active {
			return validation("worker %s is inactive", w.FullName())
		}

		units := o.UnitsByBlockType()
		ids := make([]int64, 0, len(units))
		for id := range units {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		names := make(map[int64]string, len(ids))
		for _, id := range ids {
			s, err := r.Yard().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			var have int64
			if s != nil {
				have = s.CurrentQuantity
				names[id] = s.BlockTypeName
			} else if names[id], err = blockTypeName(ctx, r, id); err != nil {
				return err
			}
			if have < units[id] {
				return fmt.Errorf("%w: %s needs %d, yard has %d",
					ErrInsufficientYardStock, names[id], units[id], have)
			}
		}

		d := sales.Dispatch{
			OrderID:      o.ID,
			DispatchDate: date,
			WorkerID:     w.ID,
			TotalUnits:   o.TotalUnits(),
			Ticket:       sales.NewWeighingTicket(gross, tare),
		}
		if err := r.Sales().CreateDispatch(ctx, &d); err != nil {
			return err
		}
		if err := r.Sales().SetOrderStatus(ctx, o.ID, sales.StatusDispatched); err != nil {
			return err
		}

		ref := dispatchRef(d.ID)
		at := e.now()
		for _, l := range o.Lines {
			ok, err := r.Yard().Debit(ctx, l.BlockTypeID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrInsufficientYardStock, names[l.BlockTypeID])
			}
			if err := r.Yard().AppendMovement(ctx, &yard.Movement{
				BlockTypeID:   l.BlockTypeID,
				BlockTypeName: names[l.BlockTypeID],
				Type:          yard.MoveOutDispatch,
				Quantity:      -l.Quantity,
				Reference:     ref,
				CreatedAt:     at,
			}); err != nil {
				return err
			}
		}
		o.Status = sales.StatusDispatched
		o.Dispatch = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("order dispatched", "code", o.Code, "net_kg", o.Dispatch.Ticket.NetWeightKg.String())
	return o, nil
}

func blockTypeName(ctx context.Context, r Repos, id int64) (string, error) {
	bt, err := r.Catalog().GetBlockType(ctx, id)
	if err != nil || bt == nil {
		return fmt.Sprintf("block type %d", id), err
	}
	return bt.Name, nil
}

func (e *Engine) GetOrder(ctx context.Context, id int64) (*sales.Order, error) {
	var o *sales.Order
	err := e.view("get_order", func(r Repos) error {
		var err error
		if o, err = r.Sales().GetOrder(ctx, id); err != nil {
			return err
		}
		if o == nil {
			return notFound("order", id)
		}
		return nil
	})
	return o, err
}

func (e *Engine) ListOrders(ctx context.Context, limit int) ([]sales.Order, error) {
	var out []sales.Order
	err := e.view("list_orders", func(r Repos) error {
		var err error
		out, err = r.Sales().ListOrders(ctx, limitOr(limit, 100))
		return err
	})
	return out, err
}
