package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/idgen"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	companyID = "c1"
	userID    = "u1"
	siteID    = "s1"
	grossSite = "s-gross"
	locA      = "loc-a"
	locB      = "loc-b"
	locOff    = "loc-off"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertQty(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "esperado %s, obtenido %s %v", want, got.String(), msgAndArgs)
}

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	ledger *inventory.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLog(t, nil)
}

// newFixtureWithLog como newFixture pero con el logger indicado (nil descarta).
func newFixtureWithLog(t *testing.T, log *logger.Logger) *fixture {
	t.Helper()
	store := memory.New()
	store.PutSite(entity.Site{ID: siteID, CompanyID: companyID, Name: "Principal"},
		entity.Location{ID: locA, Code: "A", Label: "A", Active: true},
		entity.Location{ID: locB, Code: "B", Label: "B", Active: true},
		entity.Location{ID: locOff, Code: "Z", Label: "Z", Active: false},
	)
	store.PutSite(entity.Site{ID: grossSite, CompanyID: companyID, Name: "Con IVA", CostBasis: entity.CostBasisGross})
	store.PutSite(entity.Site{ID: "s-other", CompanyID: companyID, Name: "Otra"},
		entity.Location{ID: "loc-other", Code: "O", Label: "O", Active: true},
	)
	store.PutPriorities(siteID,
		entity.LocationPriority{LocationID: locA, Priority: 1, Active: true},
		entity.LocationPriority{LocationID: locB, Priority: 2, Active: true},
	)

	store.PutProduct(entity.Product{ID: "p1", CompanyID: companyID, SKU: "HAR-1", Name: "Harina", StockUnit: "unit",
		Cost: dec("5"), TaxRate: dec("0.19"), AutoCost: true})
	store.PutProduct(entity.Product{ID: "p-ml", CompanyID: companyID, SKU: "LEC-1", Name: "Leche", StockUnit: "ml", AutoCost: true})
	store.PutProduct(entity.Product{ID: "p-box", CompanyID: companyID, SKU: "HUE-1", Name: "Huevos", StockUnit: "unit", AutoCost: true})
	store.PutProduct(entity.Product{ID: "p-manual", CompanyID: companyID, SKU: "SAL-1", Name: "Sal", StockUnit: "g", Cost: dec("2")})
	store.PutProduct(entity.Product{ID: "p-other", CompanyID: "c2", SKU: "X", Name: "Ajeno", StockUnit: "unit"})
	store.PutProfile(entity.ProductUomProfile{ID: "prof-1", ProductID: "p-box", Context: entity.ContextPurchase,
		InputUnitCode: "caja", QtyInInputUnit: dec("1"), QtyInStockUnit: dec("24"), IsDefault: true, Active: true,
		Source: entity.ProfileSourceSupplier})

	seq, err := idgen.New(1)
	require.NoError(t, err)
	ledger := inventory.NewLedger(inventory.LedgerDeps{
		TxRunner:   store,
		Products:   store.Products(),
		Stock:      store.Stock(),
		Sites:      store.Sites(),
		Uom:        store.Uom(),
		Movements:  store.Movements(),
		CostEvents: store.CostEvents(),
		Sequence:   seq,
		Logger:     log,
	})
	return &fixture{ctx: context.Background(), store: store, ledger: ledger}
}

// seed carga stock inicial directo en las fotos (ubicación y sede), sin pasar por el libro.
func (f *fixture) seed(t *testing.T, productID, locationID, qty string) {
	t.Helper()
	stock := f.store.Stock()
	scope := entity.Scope{SiteID: siteID, LocationID: locationID}
	_, err := stock.AddDelta(f.ctx, entity.StockKey{ProductID: productID, Scope: scope}, dec(qty), false)
	require.NoError(t, err)
	_, err = stock.AddDelta(f.ctx, entity.StockKey{ProductID: productID, Scope: scope.Site()}, dec(qty), false)
	require.NoError(t, err)
}

func (f *fixture) qty(t *testing.T, productID, site, locationID string) decimal.Decimal {
	t.Helper()
	snap, err := f.store.Stock().Get(f.ctx, entity.StockKey{ProductID: productID, Scope: entity.Scope{SiteID: site, LocationID: locationID}})
	require.NoError(t, err)
	if snap == nil {
		return decimal.Zero
	}
	return snap.Quantity
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Products().GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func receipt(productID, qty, unitCost string) inventory.ReceiptCommand {
	cmd := inventory.ReceiptCommand{
		CompanyID: companyID, UserID: userID, ProductID: productID, SiteID: siteID, LocationID: locA,
		Quantity: dec(qty),
	}
	if unitCost != "" {
		cmd.UnitCost = decPtr(unitCost)
	}
	return cmd
}

func TestRecordReceipt_PromedioPonderado(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", locA, "50")

	res, err := f.ledger.RecordReceipt(f.ctx, receipt("p1", "50", "3"))
	require.NoError(t, err)

	require.Len(t, res.Movements, 1)
	mov := res.Movements[0]
	assert.Equal(t, entity.KindReceipt, mov.Kind)
	assertQty(t, "50", mov.Quantity)
	assertQty(t, "1", mov.ConversionFactor)
	assert.Equal(t, userID, mov.CreatedBy)
	assert.Equal(t, res.TransactionID, mov.TransactionID)
	assert.NotZero(t, mov.Sequence)
	require.NotNil(t, mov.TotalCost)
	assertQty(t, "150", *mov.TotalCost)

	assertQty(t, "4", f.product(t, "p1").Cost)
	assertQty(t, "100", f.qty(t, "p1", siteID, locA))
	assertQty(t, "100", f.qty(t, "p1", siteID, ""))

	require.NotNil(t, res.CostEvent)
	ev := res.CostEvent
	assertQty(t, "50", ev.QtyBefore)
	assertQty(t, "5", ev.CostBefore)
	assertQty(t, "50", ev.QtyIn)
	assertQty(t, "3", ev.CostIn)
	assertQty(t, "4", ev.CostAfter)
	assert.Equal(t, entity.CostBasisNet, ev.Basis)
	assert.Equal(t, mov.ID, ev.MovementID)
	assert.Equal(t, entity.CostSourceReceipt, ev.Source)

	assert.Len(t, f.store.AllMovements(), 1)
	assert.Len(t, f.store.AllCostEvents(), 1)
}

func TestRecordReceipt_BaseBrutaUsaImpuesto(t *testing.T) {
	f := newFixture(t)
	cmd := receipt("p1", "10", "100")
	cmd.SiteID, cmd.LocationID = grossSite, ""

	res, err := f.ledger.RecordReceipt(f.ctx, cmd)
	require.NoError(t, err)
	require.NotNil(t, res.CostEvent)
	assert.Equal(t, entity.CostBasisGross, res.CostEvent.Basis)
	assertQty(t, "119", res.CostEvent.CostIn)
	// Sin existencias previas en ninguna sede el costo es el de la entrada.
	assertQty(t, "119", f.product(t, "p1").Cost)
	assertQty(t, "10", f.qty(t, "p1", grossSite, ""))
}

func TestRecordReceipt_SinCostoAutomatico(t *testing.T) {
	f := newFixture(t)
	cmd := receipt("p-manual", "500", "9")
	res, err := f.ledger.RecordReceipt(f.ctx, cmd)
	require.NoError(t, err)
	assert.Nil(t, res.CostEvent)
	assertQty(t, "2", f.product(t, "p-manual").Cost, "el costo solo cambia con costo automático")
	assert.Empty(t, f.store.AllCostEvents())

	res, err = f.ledger.RecordReceipt(f.ctx, receipt("p1", "5", ""))
	require.NoError(t, err)
	assert.Nil(t, res.CostEvent, "sin costo informado no hay recálculo")
	assertQty(t, "5", f.product(t, "p1").Cost)
}

func TestRecordReceipt_ConversionDeFamilia(t *testing.T) {
	f := newFixture(t)
	cmd := receipt("p-ml", "2", "10")
	cmd.InputUnit = "L"

	res, err := f.ledger.RecordReceipt(f.ctx, cmd)
	require.NoError(t, err)
	mov := res.Movements[0]
	assertQty(t, "2000", mov.Quantity)
	assertQty(t, "1000", mov.ConversionFactor)
	assert.Equal(t, "l", mov.InputUnit)
	require.NotNil(t, mov.InputQuantity)
	assertQty(t, "2", *mov.InputQuantity)
	assertQty(t, "0.01", f.product(t, "p-ml").Cost)
}

func TestRecordReceipt_PerfilDeCompra(t *testing.T) {
	f := newFixture(t)
	cmd := receipt("p-box", "2", "48")
	cmd.InputUnit = "caja"

	res, err := f.ledger.RecordReceipt(f.ctx, cmd)
	require.NoError(t, err)
	assertQty(t, "48", res.Movements[0].Quantity)
	assertQty(t, "24", res.Movements[0].ConversionFactor)
	assertQty(t, "2", f.product(t, "p-box").Cost)

	// El perfil es de compra: en contexto general no hay conversión para "caja".
	cmd.Context = entity.ContextGeneral
	_, err = f.ledger.RecordReceipt(f.ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrNoConversionConfigured)
}

func TestRecordReceipt_PrecioPorEmpaque(t *testing.T) {
	f := newFixture(t)
	cmd := receipt("p-box", "12", "")
	cmd.PackPrice = decPtr("60")
	cmd.PackQty = decPtr("1")
	cmd.PackUnit = "dozen"

	res, err := f.ledger.RecordReceipt(f.ctx, cmd)
	require.NoError(t, err)
	assertQty(t, "5", res.CostEvent.CostIn)
	assertQty(t, "5", f.product(t, "p-box").Cost)
}

func TestRecordReceipt_ErroresNoEscriben(t *testing.T) {
	cases := map[string]func(c *inventory.ReceiptCommand){
		"sin usuario":       func(c *inventory.ReceiptCommand) { c.UserID = "" },
		"sin producto":      func(c *inventory.ReceiptCommand) { c.ProductID = "" },
		"cantidad cero":     func(c *inventory.ReceiptCommand) { c.Quantity = decimal.Zero },
		"cantidad negativa": func(c *inventory.ReceiptCommand) { c.Quantity = dec("-1") },
		"costo negativo":    func(c *inventory.ReceiptCommand) { c.UnitCost = decPtr("-3") },
		"contexto inválido": func(c *inventory.ReceiptCommand) { c.Context = "venta" },
		"empaque incompleto": func(c *inventory.ReceiptCommand) {
			c.PackPrice = decPtr("10")
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			cmd := receipt("p1", "10", "3")
			mutate(&cmd)
			_, err := f.ledger.RecordReceipt(f.ctx, cmd)
			require.Error(t, err)
			var verr *domain.ValidationError
			assert.True(t, errors.As(err, &verr), "debe ser ValidationError: %v", err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, f.store.AllMovements())
			assert.Empty(t, f.store.Snapshots())
		})
	}
}

func TestRecordReceipt_AlcanceInvalido(t *testing.T) {
	f := newFixture(t)

	cmd := receipt("p1", "1", "")
	cmd.LocationID = "loc-other"
	_, err := f.ledger.RecordReceipt(f.ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrNotFound, "la ubicación es de otra sede")

	cmd.LocationID = locOff
	_, err = f.ledger.RecordReceipt(f.ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ubicación inactiva")

	_, err = f.ledger.RecordReceipt(f.ctx, receipt("p-other", "1", ""))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.ledger.RecordReceipt(f.ctx, receipt("no-existe", "1", ""))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cmd = receipt("p1", "1", "")
	cmd.InputUnit = "bulto"
	_, err = f.ledger.RecordReceipt(f.ctx, cmd)
	assert.True(t, domain.IsConversionError(err))

	cmd.InputUnit = "kg"
	_, err = f.ledger.RecordReceipt(f.ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrIncompatibleUnitFamily)

	assert.Empty(t, f.store.AllMovements())
}

func TestRecordReceipt_FallaDeCostoConservaMovimiento(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "p1", locA, "50")
	boom := errors.New("tabla de auditoría no disponible")
	f.store.InjectFault(memory.OpCostEventCreate, boom)

	res, err := f.ledger.RecordReceipt(f.ctx, receipt("p1", "50", "3"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StepCostUpdate, domain.FailedStep(err))

	require.NotNil(t, res, "el resultado confirmado se devuelve junto al error")
	require.Len(t, res.Movements, 1)
	assert.Nil(t, res.CostEvent)
	assert.Len(t, f.store.AllMovements(), 1)
	assertQty(t, "100", f.qty(t, "p1", siteID, locA))
	assertQty(t, "5", f.product(t, "p1").Cost, "el savepoint deshace la actualización de costo")
}

func TestRecordReceipt_FallaDePasoPrevioNoEscribe(t *testing.T) {
	cases := map[memory.Op]domain.Step{
		memory.OpMovementCreate: domain.StepMovementInsert,
		memory.OpStockAddDelta:  domain.StepSnapshotUpsert,
	}
	for op, step := range cases {
		t.Run(string(op), func(t *testing.T) {
			f := newFixture(t)
			f.store.InjectFault(op, errors.New("falla de escritura"))

			res, err := f.ledger.RecordReceipt(f.ctx, receipt("p1", "10", "3"))
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, step, domain.FailedStep(err))
			assert.Empty(t, f.store.AllMovements())
			assert.Empty(t, f.store.Snapshots())
			assert.Empty(t, f.store.AllCostEvents())
			assertQty(t, "5", f.product(t, "p1").Cost)
		})
	}
}

func TestRecordReceipt_Concurrente(t *testing.T) {
	f := newFixture(t)
	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.RecordReceipt(f.ctx, receipt("p1", "2", "5"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assertQty(t, "50", f.qty(t, "p1", siteID, locA))
	assertQty(t, "50", f.qty(t, "p1", siteID, ""))
	assertQty(t, "5", f.product(t, "p1").Cost)

	movs := f.store.AllMovements()
	require.Len(t, movs, n)
	seen := make(map[int64]bool, n)
	for _, m := range movs {
		assert.False(t, seen[m.Sequence], "secuencia repetida")
		seen[m.Sequence] = true
	}
	assert.Len(t, f.store.AllCostEvents(), n)
}

func TestNewLedger_RelojInyectado(t *testing.T) {
	store := memory.New()
	store.PutSite(entity.Site{ID: siteID, CompanyID: companyID})
	store.PutProduct(entity.Product{ID: "p1", CompanyID: companyID, StockUnit: "unit"})
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	ledger := inventory.NewLedger(inventory.LedgerDeps{
		TxRunner: store, Products: store.Products(), Stock: store.Stock(), Sites: store.Sites(),
		Now: func() time.Time { return at },
	})

	res, err := ledger.RecordReceipt(context.Background(), inventory.ReceiptCommand{
		UserID: userID, ProductID: "p1", SiteID: siteID, Quantity: dec("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, at, res.Movements[0].CreatedAt)
	assert.Zero(t, res.Movements[0].Sequence, "sin generador la secuencia queda en cero")
	require.Len(t, res.Snapshots, 1, "alcance de sede: una sola foto")
}

func TestValidationError_NombreDeCampo(t *testing.T) {
	f := newFixture(t)
	cases := map[string]func() error{
		"user_id": func() error {
			cmd := receipt("p1", "1", "")
			cmd.UserID = ""
			_, err := f.ledger.RecordReceipt(f.ctx, cmd)
			return err
		},
		"to_location_id": func() error {
			cmd := transfer("1")
			cmd.ToLocationID = cmd.FromLocationID
			_, err := f.ledger.RecordTransfer(f.ctx, cmd)
			return err
		},
		"batch_id": func() error {
			cmd := batch("1")
			cmd.BatchID = ""
			_, err := f.ledger.ConsumeBatch(f.ctx, cmd)
			return err
		},
	}
	for field, run := range cases {
		t.Run(field, func(t *testing.T) {
			var verr *domain.ValidationError
			require.True(t, errors.As(run(), &verr))
			assert.Equal(t, field, verr.Field)
		})
	}
}
