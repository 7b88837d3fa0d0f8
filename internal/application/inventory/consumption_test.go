package inventory_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withRecipe receta r1: rinde 10; por rendimiento 3 unit de p1 y 100 ml de p-ml.
func withRecipe(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.store.PutProduct(entity.Product{ID: "p-pan", CompanyID: companyID, SKU: "PAN-1", Name: "Pan", StockUnit: "unit"})
	f.store.PutRecipe(entity.Recipe{ID: "r1", ProductID: "p-pan", YieldQty: dec("10"), Lines: []entity.RecipeLine{
		{IngredientID: "p1", Quantity: dec("3"), Active: true},
		{IngredientID: "p-ml", Quantity: dec("100"), Active: true},
		{IngredientID: "p-manual", Quantity: dec("5"), Active: false},
	}})
	f.seed(t, "p1", locA, "10")
	f.seed(t, "p1", locB, "20")
	f.seed(t, "p-ml", locA, "300")
	f.seed(t, "p-ml", locB, "300")
	return f
}

func batch(produced string) inventory.ConsumeBatchCommand {
	return inventory.ConsumeBatchCommand{
		CompanyID: companyID, UserID: userID, SiteID: siteID, RecipeID: "r1", BatchID: "lote-001",
		ProducedQty: dec(produced),
	}
}

func TestConsumeBatch_ExtraePorPrioridad(t *testing.T) {
	f := withRecipe(t)

	res, err := f.ledger.ConsumeBatch(f.ctx, batch("50"))
	require.NoError(t, err)
	require.Len(t, res.Plans, 2)
	require.Len(t, res.Movements, 4)
	for _, m := range res.Movements {
		assert.Equal(t, entity.KindConsumption, m.Kind)
		assert.Equal(t, "lote-001", m.Reference)
		assert.Equal(t, res.TransactionID, m.TransactionID)
		assert.True(t, m.Quantity.IsNegative())
	}

	// p1: requiere 15, se toma A (10) y luego B (5).
	assertQty(t, "0", f.qty(t, "p1", siteID, locA))
	assertQty(t, "15", f.qty(t, "p1", siteID, locB))
	assertQty(t, "15", f.qty(t, "p1", siteID, ""))
	// p-ml: requiere 500, A entrega 300 y B 200.
	assertQty(t, "0", f.qty(t, "p-ml", siteID, locA))
	assertQty(t, "100", f.qty(t, "p-ml", siteID, locB))

	// La línea inactiva no se consume.
	assertQty(t, "0", f.qty(t, "p-manual", siteID, ""))
}

func TestConsumeBatch_FaltanteNoEscribe(t *testing.T) {
	f := withRecipe(t)

	_, err := f.ledger.ConsumeBatch(f.ctx, batch("110"))
	require.Error(t, err)
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "p-ml", insufficient.ProductID, "los ingredientes se evalúan en orden")
	assertQty(t, "600", insufficient.Available)
	assertQty(t, "1100", insufficient.Requested)

	assert.Empty(t, f.store.AllMovements())
	assertQty(t, "10", f.qty(t, "p1", siteID, locA))
}

func TestConsumeBatch_Parcial(t *testing.T) {
	f := withRecipe(t)
	cmd := batch("110")
	cmd.AllowPartial = true

	res, err := f.ledger.ConsumeBatch(f.ctx, cmd)
	require.NoError(t, err)
	require.Len(t, res.Plans, 2)
	for _, p := range res.Plans {
		assert.False(t, p.Plan.Satisfied())
	}
	assertQty(t, "500", res.Plans[0].Plan.Missing)
	assertQty(t, "3", res.Plans[1].Plan.Missing)
	assertQty(t, "0", f.qty(t, "p1", siteID, ""))
}

func TestConsumeBatch_Validaciones(t *testing.T) {
	f := withRecipe(t)

	_, err := f.ledger.ConsumeBatch(f.ctx, batch("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cmd := batch("10")
	cmd.BatchID = ""
	_, err = f.ledger.ConsumeBatch(f.ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	cmd = batch("10")
	cmd.RecipeID = "r-x"
	_, err = f.ledger.ConsumeBatch(f.ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.store.AllMovements())
}

func TestPlanAllocation_SoloLectura(t *testing.T) {
	f := withRecipe(t)

	plan, err := f.ledger.PlanAllocation(f.ctx, companyID, "p1", siteID, dec("25"))
	require.NoError(t, err)
	assert.True(t, plan.Satisfied())
	require.Len(t, plan.Draws, 2)
	assert.Equal(t, locA, plan.Draws[0].LocationID)
	assertQty(t, "10", plan.Draws[0].Quantity)
	assert.Equal(t, locB, plan.Draws[1].LocationID)
	assertQty(t, "15", plan.Draws[1].Quantity)

	plan, err = f.ledger.PlanAllocation(f.ctx, companyID, "p1", siteID, dec("35"))
	require.NoError(t, err)
	assertQty(t, "5", plan.Missing)

	assert.Empty(t, f.store.AllMovements())
	assertQty(t, "10", f.qty(t, "p1", siteID, locA))

	_, err = f.ledger.PlanAllocation(f.ctx, companyID, "", siteID, dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRebuildSnapshot_DesdeElLibro(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.RecordReceipt(f.ctx, receipt("p1", "10", ""))
	require.NoError(t, err)
	_, err = f.ledger.RecordAdjustment(f.ctx, adjustment("3", inventory.DirectionDecrease))
	require.NoError(t, err)

	key := entity.StockKey{ProductID: "p1", Scope: entity.Scope{SiteID: siteID, LocationID: locA}}
	require.NoError(t, f.store.Stock().Set(f.ctx, key, dec("999")))
	require.NoError(t, f.store.Stock().Set(f.ctx, entity.StockKey{ProductID: "p1", Scope: key.Site()}, dec("-4")))

	snap, err := f.ledger.RebuildSnapshot(f.ctx, inventory.RebuildCommand{
		CompanyID: companyID, UserID: userID, ProductID: "p1", SiteID: siteID, LocationID: locA,
	})
	require.NoError(t, err)
	assertQty(t, "7", snap.Quantity)
	assertQty(t, "7", f.qty(t, "p1", siteID, locA))

	snap, err = f.ledger.RebuildSnapshot(f.ctx, inventory.RebuildCommand{
		CompanyID: companyID, UserID: userID, ProductID: "p1", SiteID: siteID,
	})
	require.NoError(t, err)
	assertQty(t, "7", snap.Quantity)
	assertQty(t, "7", f.qty(t, "p1", siteID, ""))
	assert.Len(t, f.store.AllMovements(), 2, "la reconstrucción no escribe movimientos")
}

// Propiedad: sin pisos activados, cada foto es la suma de los movimientos de su alcance.
func TestLedger_FotosIgualanLaSumaDelLibro(t *testing.T) {
	f := newFixture(t)
	steps := []func() error{
		func() error { _, err := f.ledger.RecordReceipt(f.ctx, receipt("p1", "40", "4")); return err },
		func() error {
			_, err := f.ledger.RecordAdjustment(f.ctx, adjustment("5", inventory.DirectionDecrease))
			return err
		},
		func() error { _, err := f.ledger.RecordTransfer(f.ctx, transfer("12")); return err },
		func() error { _, err := f.ledger.RecordWithdrawal(f.ctx, withdrawal("8", "waste")); return err },
		func() error { _, err := f.ledger.RecordCount(f.ctx, count(locB, "11")); return err },
	}
	for _, step := range steps {
		require.NoError(t, step())
	}

	for _, sc := range []entity.Scope{{SiteID: siteID, LocationID: locA}, {SiteID: siteID, LocationID: locB}, {SiteID: siteID}} {
		sum, err := f.store.Movements().SumForScope(f.ctx, "p1", sc)
		require.NoError(t, err)
		assertQty(t, sum.String(), f.qty(t, "p1", sc.SiteID, sc.LocationID), "alcance %+v", sc)
	}
}
