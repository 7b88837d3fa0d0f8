package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/allocation"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/domain/uom"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// Result lo que quedó confirmado por una acción del libro.
type Result struct {
	TransactionID string
	Movements     []*entity.Movement
	Snapshots     []entity.StockSnapshot
	CostEvent     *entity.ProductCostEvent
	Plans         []IngredientPlan
	Skipped       bool // sin cambio de cantidad: no se escribió nada
}

// IngredientPlan plan de asignación usado para un ingrediente de un lote.
type IngredientPlan struct {
	IngredientID string
	Required     decimal.Decimal
	Plan         allocation.Plan
}

// LedgerDeps dependencias del libro de movimientos.
type LedgerDeps struct {
	TxRunner         TxRunner
	Products         repository.ProductRepository
	Stock            repository.StockRepository
	Sites            repository.SiteRepository
	Uom              repository.UomRepository
	Movements        repository.MovementRepository
	CostEvents       repository.ProductCostEventRepository
	Converter        *uom.Converter
	Sequence         SequenceGenerator
	Logger           *logger.Logger
	DefaultCostBasis entity.CostBasis
	Now              func() time.Time
}

// Ledger protocolo por evento: validar, convertir, agregar movimiento, actualizar fotos y,
// si aplica, recalcular costo. El movimiento es el ancla de consistencia.
type Ledger struct {
	tx        TxRunner
	products  repository.ProductRepository
	stock     repository.StockRepository
	sites     repository.SiteRepository
	uomRepo   repository.UomRepository
	movements repository.MovementRepository
	costs     repository.ProductCostEventRepository
	converter *uom.Converter
	seq       SequenceGenerator
	log       *logger.Logger
	basis     entity.CostBasis
	now       func() time.Time
}

// NewLedger construye el libro de movimientos.
func NewLedger(deps LedgerDeps) *Ledger {
	l := &Ledger{
		tx:        deps.TxRunner,
		products:  deps.Products,
		stock:     deps.Stock,
		sites:     deps.Sites,
		uomRepo:   deps.Uom,
		movements: deps.Movements,
		costs:     deps.CostEvents,
		converter: deps.Converter,
		seq:       deps.Sequence,
		log:       deps.Logger,
		basis:     deps.DefaultCostBasis,
		now:       deps.Now,
	}
	if l.converter == nil {
		l.converter = uom.NewConverter(uom.DefaultCatalog())
	}
	if l.log == nil {
		l.log = logger.Nop()
	}
	if !l.basis.Valid() {
		l.basis = entity.CostBasisNet
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Converter conversor usado por el libro.
func (l *Ledger) Converter() *uom.Converter { return l.converter }

// loadProduct valida que el producto exista y pertenezca a la empresa.
func (l *Ledger) loadProduct(ctx context.Context, companyID, productID string) (*entity.Product, error) {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if companyID != "" && p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// loadScope valida sede y, si viene, que la ubicación pertenezca a ella.
func (l *Ledger) loadScope(ctx context.Context, companyID, siteID, locationID string) (*entity.Site, error) {
	site, err := l.sites.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, fmt.Errorf("%w: sede %s", domain.ErrNotFound, siteID)
	}
	if companyID != "" && site.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if locationID == "" {
		return site, nil
	}
	loc, err := l.sites.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.SiteID != siteID {
		return nil, fmt.Errorf("%w: ubicación %s en sede %s", domain.ErrNotFound, locationID, siteID)
	}
	if !loc.Active {
		return nil, domain.NewValidationError("location_id", "la ubicación está inactiva")
	}
	return site, nil
}

// toStockUnits convierte la cantidad capturada con el perfil por defecto del contexto
// cuando corresponde a la unidad capturada; si no, matemática estricta de familia.
func (l *Ledger) toStockUnits(ctx context.Context, p *entity.Product, q decimal.Decimal, inputUnit string, usage entity.UsageContext) (uom.Conversion, error) {
	if inputUnit == "" || entity.NormalizeUnitCode(inputUnit) == entity.NormalizeUnitCode(p.StockUnit) {
		return l.converter.ResolveStockQuantity(q, "", p.StockUnit, nil)
	}
	var profile *entity.ProductUomProfile
	if l.uomRepo != nil {
		profiles, err := l.uomRepo.ListProfiles(ctx, p.ID)
		if err != nil {
			return uom.Conversion{}, err
		}
		profile = uom.SelectProfileForContext(profiles, p.ID, usage)
		if profile != nil && entity.NormalizeUnitCode(profile.InputUnitCode) != entity.NormalizeUnitCode(inputUnit) {
			profile = nil
		}
	}
	return l.converter.ResolveStockQuantity(q, inputUnit, p.StockUnit, profile)
}

// newMovement arma el movimiento con identidad, orden y trazabilidad de la conversión.
func (l *Ledger) newMovement(txID string, kind entity.MovementKind, productID string, scope entity.Scope,
	signed decimal.Decimal, input decimal.Decimal, inputUnit string, conv uom.Conversion, userID string,
) *entity.Movement {
	in := input
	m := &entity.Movement{
		ID:               uuid.New().String(),
		TransactionID:    txID,
		ProductID:        productID,
		SiteID:           scope.SiteID,
		LocationID:       scope.LocationID,
		Kind:             kind,
		Quantity:         signed,
		InputQuantity:    &in,
		InputUnit:        entity.NormalizeUnitCode(inputUnit),
		ConversionFactor: conv.Factor,
		CreatedBy:        userID,
		CreatedAt:        l.now(),
	}
	if l.seq != nil {
		m.Sequence = l.seq.Next()
	}
	return m
}

// valueAt registra costo unitario y total del movimiento.
func valueAt(m *entity.Movement, unitCost decimal.Decimal) {
	uc := unitCost
	total := m.Quantity.Mul(unitCost).Round(6)
	m.UnitCost = &uc
	m.TotalCost = &total
}

// appendMovement paso 3: inserta el movimiento inmutable.
func appendMovement(ctx context.Context, tx TxScope, m *entity.Movement) error {
	return domain.StepFailed(domain.StepMovementInsert, tx.Movements().Create(ctx, m))
}

// applyDelta paso 4: delta atómico en la ubicación (si aplica) y siempre en la sede.
func (l *Ledger) applyDelta(ctx context.Context, tx TxScope, productID string, scope entity.Scope, delta decimal.Decimal, floorAtZero bool) ([]entity.StockSnapshot, error) {
	keys := []entity.StockKey{{ProductID: productID, Scope: scope.Site()}}
	if scope.IsLocation() {
		keys = append([]entity.StockKey{{ProductID: productID, Scope: scope}}, keys...)
	}
	snaps := make([]entity.StockSnapshot, 0, len(keys))
	for _, k := range keys {
		qty, err := tx.Stock().AddDelta(ctx, k, delta, floorAtZero)
		if err != nil {
			return nil, stepSnapshot(err)
		}
		snaps = append(snaps, entity.StockSnapshot{
			ProductID: productID, SiteID: k.SiteID, LocationID: k.LocationID, Quantity: qty, UpdatedAt: l.now(),
		})
	}
	return snaps, nil
}

func stepSnapshot(err error) error {
	return domain.StepFailed(domain.StepSnapshotUpsert, err)
}

func (l *Ledger) logCommitted(action string, res *Result) {
	for _, m := range res.Movements {
		l.log.Info().
			Str("action", action).
			Str("transaction_id", res.TransactionID).
			Str("movement_id", m.ID).
			Str("product_id", m.ProductID).
			Str("site_id", m.SiteID).
			Str("location_id", m.LocationID).
			Str("kind", m.Kind.String()).
			Str("quantity", m.Quantity.String()).
			Msg("movimiento registrado")
	}
}
