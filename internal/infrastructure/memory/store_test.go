package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = entity.StockKey{ProductID: "p1", Scope: entity.Scope{SiteID: "s1", LocationID: "l1"}}

func TestRun_RollbackAnteError(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(tx inventory.TxScope) error {
		_, err := tx.Stock().AddDelta(ctx, key, decimal.NewFromInt(5), false)
		require.NoError(t, err)
		require.NoError(t, tx.Movements().Create(ctx, &entity.Movement{ProductID: "p1", SiteID: "s1", Kind: entity.KindReceipt}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Snapshots())
	assert.Empty(t, s.AllMovements())
}

func TestSavepoint_SoloDeshaceLoInterno(t *testing.T) {
	s := memory.New()
	s.PutProduct(entity.Product{ID: "p1", Cost: decimal.NewFromInt(5)})
	ctx := context.Background()

	var spErr error
	err := s.Run(ctx, func(tx inventory.TxScope) error {
		if _, err := tx.Stock().AddDelta(ctx, key, decimal.NewFromInt(5), false); err != nil {
			return err
		}
		spErr = tx.Savepoint(ctx, func(sp inventory.TxScope) error {
			require.NoError(t, sp.Products().UpdateCost(ctx, "p1", decimal.NewFromInt(9)))
			return errors.New("falla de costo")
		})
		return nil
	})
	require.NoError(t, err)
	assert.Error(t, spErr)

	snap, err := s.Stock().Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.Quantity.Equal(decimal.NewFromInt(5)))

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.Cost.Equal(decimal.NewFromInt(5)), "el costo vuelve al valor previo al savepoint")
}

func TestAddDelta_PisoEnCero(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	stock := s.Stock()

	q, err := stock.AddDelta(ctx, key, decimal.NewFromInt(3), false)
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(3)))

	q, err = stock.AddDelta(ctx, key, decimal.NewFromInt(-10), true)
	require.NoError(t, err)
	assert.True(t, q.IsZero())

	q, err = stock.AddDelta(ctx, key, decimal.NewFromInt(-2), false)
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(-2)), "sin piso la cantidad puede quedar negativa")
}

func TestInjectFault(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	boom := errors.New("disco lleno")
	s.InjectFault(memory.OpMovementCreate, boom)

	err := s.Movements().Create(ctx, &entity.Movement{ProductID: "p1", SiteID: "s1", Kind: entity.KindReceipt})
	assert.ErrorIs(t, err, boom)

	s.ClearFaults()
	assert.NoError(t, s.Movements().Create(ctx, &entity.Movement{ProductID: "p1", SiteID: "s1", Kind: entity.KindReceipt}))
}

func TestSumForScope_SedeIncluyeUbicaciones(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	movs := s.Movements()
	for _, m := range []entity.Movement{
		{ProductID: "p1", SiteID: "s1", LocationID: "l1", Kind: entity.KindReceipt, Quantity: decimal.NewFromInt(10)},
		{ProductID: "p1", SiteID: "s1", LocationID: "l2", Kind: entity.KindReceipt, Quantity: decimal.NewFromInt(4)},
		{ProductID: "p1", SiteID: "s1", Kind: entity.KindAdjustment, Quantity: decimal.NewFromInt(-1)},
		{ProductID: "p1", SiteID: "s2", Kind: entity.KindReceipt, Quantity: decimal.NewFromInt(100)},
	} {
		m := m
		require.NoError(t, movs.Create(ctx, &m))
	}

	site, err := movs.SumForScope(ctx, "p1", entity.SiteScope("s1"))
	require.NoError(t, err)
	assert.True(t, site.Equal(decimal.NewFromInt(13)))

	loc, err := movs.SumForScope(ctx, "p1", entity.Scope{SiteID: "s1", LocationID: "l1"})
	require.NoError(t, err)
	assert.True(t, loc.Equal(decimal.NewFromInt(10)))
}

func TestSeedDemo(t *testing.T) {
	s := memory.New()
	memory.SeedDemo(s, "c-demo")
	ctx := context.Background()

	units, err := s.Uom().ListUnits(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, units)

	site, err := s.Sites().GetSite(ctx, memory.DemoSiteID)
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.Equal(t, "c-demo", site.CompanyID)

	recipe, err := s.Sites().GetRecipe(ctx, memory.DemoRecipeID)
	require.NoError(t, err)
	require.NotNil(t, recipe)
	for _, line := range recipe.Lines {
		p, err := s.Products().GetByID(ctx, line.IngredientID)
		require.NoError(t, err)
		assert.NotNil(t, p, "ingrediente %s sembrado", line.IngredientID)
	}

	profiles, err := s.Uom().ListProfiles(ctx, "demo-huevo")
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}
