package memory

import (
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/uom"
	"github.com/shopspring/decimal"
)

// Identificadores fijos de los datos de demostración.
const (
	DemoSiteID   = "demo-site"
	DemoRecipeID = "demo-pan"
)

// SeedDemo carga unidades, una sede con dos ubicaciones, tres productos y una receta para
// probar la API sin base de datos.
func SeedDemo(s *Store, companyID string) {
	d := decimal.RequireFromString
	s.PutUnits(uom.DefaultUnits()...)
	s.PutSite(entity.Site{ID: DemoSiteID, CompanyID: companyID, Name: "Cocina central", CostBasis: entity.CostBasisNet},
		entity.Location{ID: "demo-loc-fria", Code: "FRIA", Label: "Cuarto frío", Active: true},
		entity.Location{ID: "demo-loc-seca", Code: "SECA", Label: "Bodega seca", Active: true},
	)
	s.PutPriorities(DemoSiteID,
		entity.LocationPriority{LocationID: "demo-loc-seca", Priority: 1, Active: true},
		entity.LocationPriority{LocationID: "demo-loc-fria", Priority: 2, Active: true},
	)
	s.PutProduct(entity.Product{ID: "demo-harina", CompanyID: companyID, SKU: "HAR-001", Name: "Harina de trigo",
		StockUnit: "g", TaxRate: d("0.19"), AutoCost: true})
	s.PutProduct(entity.Product{ID: "demo-leche", CompanyID: companyID, SKU: "LEC-001", Name: "Leche entera",
		StockUnit: "ml", TaxRate: d("0.05"), AutoCost: true})
	s.PutProduct(entity.Product{ID: "demo-huevo", CompanyID: companyID, SKU: "HUE-001", Name: "Huevo AA",
		StockUnit: "unit", AutoCost: true})
	s.PutProfile(entity.ProductUomProfile{ID: "demo-prof-cubeta", ProductID: "demo-huevo", Context: entity.ContextPurchase,
		InputUnitCode: "cubeta", QtyInInputUnit: d("1"), QtyInStockUnit: d("30"), IsDefault: true, Active: true,
		Source: entity.ProfileSourceSupplier})
	s.PutRecipe(entity.Recipe{ID: DemoRecipeID, ProductID: "demo-pan", YieldQty: d("10"), Lines: []entity.RecipeLine{
		{IngredientID: "demo-harina", Quantity: d("1000"), Active: true},
		{IngredientID: "demo-leche", Quantity: d("250"), Active: true},
		{IngredientID: "demo-huevo", Quantity: d("4"), Active: true},
	}})
}
