package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.MovementRepository         = (*movementRepo)(nil)
	_ repository.StockRepository            = (*stockRepo)(nil)
	_ repository.ProductRepository          = (*productRepo)(nil)
	_ repository.ProductCostEventRepository = (*costEventRepo)(nil)
	_ repository.SiteRepository             = (*siteRepo)(nil)
	_ repository.UomRepository              = (*uomRepo)(nil)
)

type movementRepo struct{ v view }

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.v.do(func(st *state) error {
		if err := r.v.store.fault(OpMovementCreate); err != nil {
			return err
		}
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if m.Kind == entity.KindUnknown {
			return domain.NewValidationError("kind", "tipo de movimiento sin definir")
		}
		for _, existing := range st.movements {
			if existing.ID == m.ID {
				return domain.ErrDuplicate
			}
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.v.do(func(st *state) error {
		for i := range st.movements {
			if st.movements[i].ID == id {
				m := st.movements[i]
				out = &m
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	var list []*entity.Movement
	err := r.v.do(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.ProductID != productID {
				continue
			}
			if from != nil && m.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && m.CreatedAt.After(*to) {
				continue
			}
			list = append(list, &m)
		}
		return nil
	})
	if offset >= len(list) {
		return nil, err
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, err
}

func (r *movementRepo) SumForScope(_ context.Context, productID string, sc entity.Scope) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.do(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID != productID || m.SiteID != sc.SiteID {
				continue
			}
			if sc.IsLocation() && m.LocationID != sc.LocationID {
				continue
			}
			total = total.Add(m.Quantity)
		}
		return nil
	})
	return total, err
}

type stockRepo struct{ v view }

func (r *stockRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	var out *entity.StockSnapshot
	err := r.v.do(func(st *state) error {
		if snap, ok := st.stock[key]; ok {
			out = &snap
		}
		return nil
	})
	return out, err
}

// GetForUpdate el mutex de la transacción ya serializa; equivale a Get.
func (r *stockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	return r.Get(ctx, key)
}

func (r *stockRepo) AddDelta(_ context.Context, key entity.StockKey, delta decimal.Decimal, floorAtZero bool) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.v.do(func(st *state) error {
		if err := r.v.store.fault(OpStockAddDelta); err != nil {
			return err
		}
		snap, ok := st.stock[key]
		if !ok {
			snap = entity.StockSnapshot{ProductID: key.ProductID, SiteID: key.SiteID, LocationID: key.LocationID}
		}
		snap.Quantity = snap.Quantity.Add(delta)
		if floorAtZero && snap.Quantity.IsNegative() {
			snap.Quantity = decimal.Zero
		}
		snap.UpdatedAt = time.Now()
		st.stock[key] = snap
		qty = snap.Quantity
		return nil
	})
	return qty, err
}

func (r *stockRepo) Set(_ context.Context, key entity.StockKey, qty decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		if err := r.v.store.fault(OpStockSet); err != nil {
			return err
		}
		st.stock[key] = entity.StockSnapshot{
			ProductID: key.ProductID, SiteID: key.SiteID, LocationID: key.LocationID, Quantity: qty, UpdatedAt: time.Now(),
		}
		return nil
	})
}

func (r *stockRepo) SumSites(_ context.Context, productID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.do(func(st *state) error {
		for k, snap := range st.stock {
			if k.ProductID == productID && !k.IsLocation() {
				total = total.Add(snap.Quantity)
			}
		}
		return nil
	})
	return total, err
}

func (r *stockRepo) ListLocationStock(_ context.Context, productID, siteID string) ([]entity.LocationStock, error) {
	var list []entity.LocationStock
	err := r.v.do(func(st *state) error {
		for k, snap := range st.stock {
			if k.ProductID != productID || k.SiteID != siteID || !k.IsLocation() {
				continue
			}
			list = append(list, entity.LocationStock{
				LocationID: k.LocationID, Label: st.locations[k.LocationID].Label, Available: snap.Quantity,
			})
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Label != list[j].Label {
			return list[i].Label < list[j].Label
		}
		return list[i].LocationID < list[j].LocationID
	})
	return list, err
}

type productRepo struct{ v view }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) UpdateCost(_ context.Context, productID string, cost decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		if err := r.v.store.fault(OpUpdateCost); err != nil {
			return err
		}
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		p.Cost = cost
		p.UpdatedAt = time.Now()
		st.products[productID] = p
		return nil
	})
}

type costEventRepo struct{ v view }

func (r *costEventRepo) Create(_ context.Context, ev *entity.ProductCostEvent) error {
	return r.v.do(func(st *state) error {
		if err := r.v.store.fault(OpCostEventCreate); err != nil {
			return err
		}
		if ev.ID == "" {
			ev.ID = uuid.New().String()
		}
		st.costEvents = append(st.costEvents, *ev)
		return nil
	})
}

func (r *costEventRepo) ListByProduct(_ context.Context, productID string, limit int) ([]*entity.ProductCostEvent, error) {
	var list []*entity.ProductCostEvent
	err := r.v.do(func(st *state) error {
		for i := len(st.costEvents) - 1; i >= 0; i-- {
			ev := st.costEvents[i]
			if ev.ProductID != productID {
				continue
			}
			list = append(list, &ev)
			if limit > 0 && len(list) == limit {
				break
			}
		}
		return nil
	})
	return list, err
}

type siteRepo struct{ v view }

func (r *siteRepo) GetSite(_ context.Context, id string) (*entity.Site, error) {
	var out *entity.Site
	err := r.v.do(func(st *state) error {
		if s, ok := st.sites[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *siteRepo) GetLocation(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.v.do(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

func (r *siteRepo) ListLocations(_ context.Context, siteID string) ([]entity.Location, error) {
	var list []entity.Location
	err := r.v.do(func(st *state) error {
		for _, l := range st.locations {
			if l.SiteID == siteID {
				list = append(list, l)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Label != list[j].Label {
			return list[i].Label < list[j].Label
		}
		return list[i].ID < list[j].ID
	})
	return list, err
}

func (r *siteRepo) ListPriorities(_ context.Context, siteID string) ([]entity.LocationPriority, error) {
	var list []entity.LocationPriority
	err := r.v.do(func(st *state) error {
		list = append(list, st.priorities[siteID]...)
		return nil
	})
	return list, err
}

func (r *siteRepo) GetRecipe(_ context.Context, id string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.v.do(func(st *state) error {
		if rc, ok := st.recipes[id]; ok {
			rc.Lines = append([]entity.RecipeLine(nil), rc.Lines...)
			out = &rc
		}
		return nil
	})
	return out, err
}

type uomRepo struct{ v view }

func (r *uomRepo) ListUnits(_ context.Context) ([]entity.Unit, error) {
	var list []entity.Unit
	err := r.v.do(func(st *state) error {
		list = append(list, st.units...)
		return nil
	})
	return list, err
}

func (r *uomRepo) ListProfiles(_ context.Context, productID string) ([]entity.ProductUomProfile, error) {
	var list []entity.ProductUomProfile
	err := r.v.do(func(st *state) error {
		list = append(list, st.profiles[productID]...)
		return nil
	})
	return list, err
}
