// Package memory implementa los puertos del libro en memoria de proceso.
// Un único mutex serializa las transacciones, lo que equivale a bloquear todas las filas;
// sirve para desarrollo local y pruebas.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Op operación de escritura en la que se puede inyectar un fallo.
type Op string

const (
	OpMovementCreate  Op = "movement_create"
	OpStockAddDelta   Op = "stock_add_delta"
	OpStockSet        Op = "stock_set"
	OpUpdateCost      Op = "product_update_cost"
	OpCostEventCreate Op = "cost_event_create"
)

// Store estado completo en memoria.
type Store struct {
	mu     sync.Mutex
	state  *state
	faults map[Op]error
}

type state struct {
	units      []entity.Unit
	profiles   map[string][]entity.ProductUomProfile
	products   map[string]entity.Product
	sites      map[string]entity.Site
	locations  map[string]entity.Location
	priorities map[string][]entity.LocationPriority
	recipes    map[string]entity.Recipe
	stock      map[entity.StockKey]entity.StockSnapshot
	movements  []entity.Movement
	costEvents []entity.ProductCostEvent
}

var _ inventory.TxRunner = (*Store)(nil)

// New crea un store vacío.
func New() *Store {
	return &Store{
		state: &state{
			profiles:   map[string][]entity.ProductUomProfile{},
			products:   map[string]entity.Product{},
			sites:      map[string]entity.Site{},
			locations:  map[string]entity.Location{},
			priorities: map[string][]entity.LocationPriority{},
			recipes:    map[string]entity.Recipe{},
			stock:      map[entity.StockKey]entity.StockSnapshot{},
		},
		faults: map[Op]error{},
	}
}

// clone copia profunda; las transacciones restauran esta copia si fallan.
func (st *state) clone() *state {
	c := &state{
		units:      append([]entity.Unit(nil), st.units...),
		profiles:   make(map[string][]entity.ProductUomProfile, len(st.profiles)),
		products:   make(map[string]entity.Product, len(st.products)),
		sites:      make(map[string]entity.Site, len(st.sites)),
		locations:  make(map[string]entity.Location, len(st.locations)),
		priorities: make(map[string][]entity.LocationPriority, len(st.priorities)),
		recipes:    make(map[string]entity.Recipe, len(st.recipes)),
		stock:      make(map[entity.StockKey]entity.StockSnapshot, len(st.stock)),
		movements:  append([]entity.Movement(nil), st.movements...),
		costEvents: append([]entity.ProductCostEvent(nil), st.costEvents...),
	}
	for k, v := range st.profiles {
		c.profiles[k] = append([]entity.ProductUomProfile(nil), v...)
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.sites {
		c.sites[k] = v
	}
	for k, v := range st.locations {
		c.locations[k] = v
	}
	for k, v := range st.priorities {
		c.priorities[k] = append([]entity.LocationPriority(nil), v...)
	}
	for k, v := range st.recipes {
		c.recipes[k] = v
	}
	for k, v := range st.stock {
		c.stock[k] = v
	}
	return c
}

// InjectFault hace que la operación op falle con err hasta ClearFaults.
func (s *Store) InjectFault(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// ClearFaults quita los fallos inyectados.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[Op]error{}
}

// fault se consulta con s.mu tomado.
func (s *Store) fault(op Op) error {
	return s.faults[op]
}

// Run ejecuta fn con el store bloqueado; si fn falla el estado vuelve al inicial.
func (s *Store) Run(ctx context.Context, fn func(tx inventory.TxScope) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.clone()
	if err := fn(&scope{store: s, st: s.state}); err != nil {
		*s.state = *backup
		return err
	}
	return nil
}

// scope repos atados a la transacción en curso.
type scope struct {
	store *Store
	st    *state
}

func (sc *scope) view() view { return view{store: sc.store, tx: sc.st} }

func (sc *scope) Movements() repository.MovementRepository { return &movementRepo{sc.view()} }
func (sc *scope) Stock() repository.StockRepository        { return &stockRepo{sc.view()} }
func (sc *scope) Products() repository.ProductRepository   { return &productRepo{sc.view()} }
func (sc *scope) CostEvents() repository.ProductCostEventRepository {
	return &costEventRepo{sc.view()}
}

// Savepoint deshace solo lo escrito por fn si falla.
func (sc *scope) Savepoint(ctx context.Context, fn func(sp inventory.TxScope) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	backup := sc.st.clone()
	if err := fn(sc); err != nil {
		*sc.st = *backup
		return err
	}
	return nil
}

// view resuelve el estado: el de la transacción o el global bajo el mutex.
type view struct {
	store *Store
	tx    *state
}

func (v view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

// Repositorios fuera de transacción (lecturas y escrituras sueltas).

func (s *Store) Movements() repository.MovementRepository          { return &movementRepo{view{store: s}} }
func (s *Store) Stock() repository.StockRepository                 { return &stockRepo{view{store: s}} }
func (s *Store) Products() repository.ProductRepository            { return &productRepo{view{store: s}} }
func (s *Store) CostEvents() repository.ProductCostEventRepository { return &costEventRepo{view{store: s}} }
func (s *Store) Sites() repository.SiteRepository                  { return &siteRepo{view{store: s}} }
func (s *Store) Uom() repository.UomRepository                     { return &uomRepo{view{store: s}} }

// Carga de datos maestros.

// PutUnits reemplaza el catálogo de unidades.
func (s *Store) PutUnits(units ...entity.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.units = append([]entity.Unit(nil), units...)
}

// PutProduct crea o reemplaza un producto.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = p
}

// PutProfile agrega un perfil de conversión.
func (s *Store) PutProfile(p entity.ProductUomProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.profiles[p.ProductID] = append(s.state.profiles[p.ProductID], p)
}

// PutSite crea o reemplaza una sede con sus ubicaciones.
func (s *Store) PutSite(site entity.Site, locations ...entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.sites[site.ID] = site
	for _, l := range locations {
		l.SiteID = site.ID
		s.state.locations[l.ID] = l
	}
}

// PutPriorities reemplaza las prioridades de extracción de la sede.
func (s *Store) PutPriorities(siteID string, priorities ...entity.LocationPriority) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.priorities[siteID] = append([]entity.LocationPriority(nil), priorities...)
}

// PutRecipe crea o reemplaza una receta.
func (s *Store) PutRecipe(r entity.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Lines = append([]entity.RecipeLine(nil), r.Lines...)
	s.state.recipes[r.ID] = r
}

// Lecturas de inspección.

// AllMovements copia del libro en orden de inserción.
func (s *Store) AllMovements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Movement(nil), s.state.movements...)
}

// AllCostEvents copia de la auditoría de costos.
func (s *Store) AllCostEvents() []entity.ProductCostEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.ProductCostEvent(nil), s.state.costEvents...)
}

// Snapshots copia de todas las fotos ordenadas por producto y alcance.
func (s *Store) Snapshots() []entity.StockSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.StockSnapshot, 0, len(s.state.stock))
	for _, snap := range s.state.stock {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.SiteID != b.SiteID {
			return a.SiteID < b.SiteID
		}
		return a.LocationID < b.LocationID
	})
	return out
}
