package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMovements_MasRecientesPrimero(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.RecordReceipt(f.ctx, receipt("p1", "10", "4"))
	require.NoError(t, err)
	_, err = f.ledger.RecordWithdrawal(f.ctx, inventory.WithdrawalCommand{
		CompanyID: companyID, UserID: userID, ProductID: "p1", SiteID: siteID, LocationID: locA, Quantity: dec("3"),
	})
	require.NoError(t, err)

	list, err := f.ledger.ListMovements(f.ctx, companyID, "p1", nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assertQty(t, "-3", list[0].Quantity)
	assertQty(t, "10", list[1].Quantity)

	page, err := f.ledger.ListMovements(f.ctx, companyID, "p1", nil, nil, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, list[1].ID, page[0].ID)
}

func TestListMovements_Validaciones(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.ListMovements(f.ctx, companyID, "", nil, nil, 10, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	from := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, err = f.ledger.ListMovements(f.ctx, companyID, "p1", &from, &to, 10, 0)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "to", verr.Field)

	_, err = f.ledger.ListMovements(f.ctx, companyID, "p-other", nil, nil, 10, 0)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.ledger.ListMovements(f.ctx, companyID, "nope", nil, nil, 10, 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListCostEvents(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.RecordReceipt(f.ctx, receipt("p1", "10", "4"))
	require.NoError(t, err)
	_, err = f.ledger.RecordReceipt(f.ctx, receipt("p1", "10", "6"))
	require.NoError(t, err)

	events, err := f.ledger.ListCostEvents(f.ctx, companyID, "p1", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assertQty(t, "6", events[0].CostIn)
	assertQty(t, "4", events[1].CostIn)

	one, err := f.ledger.ListCostEvents(f.ctx, companyID, "p1", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestHistorial_SinRepositorios(t *testing.T) {
	store := memory.New()
	ledger := inventory.NewLedger(inventory.LedgerDeps{TxRunner: store, Products: store.Products(), Stock: store.Stock(), Sites: store.Sites()})

	_, err := ledger.ListMovements(context.Background(), companyID, "p1", nil, nil, 10, 0)
	assert.Error(t, err)
	_, err = ledger.ListCostEvents(context.Background(), companyID, "p1", 10)
	assert.Error(t, err)
}
