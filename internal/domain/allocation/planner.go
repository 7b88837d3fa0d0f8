// Package allocation decide de qué ubicaciones se extrae un ingrediente y en qué orden.
// Son cálculos puros sobre datos ya leídos; no tocan persistencia.
package allocation

import (
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/quantity"
	"github.com/shopspring/decimal"
)

// Draw extracción planificada de una ubicación.
type Draw struct {
	LocationID string
	Quantity   decimal.Decimal
}

// Plan plan de asignación efímero: extracciones en orden más el faltante.
type Plan struct {
	Draws   []Draw
	Missing decimal.Decimal
}

// Total suma de lo extraído.
func (p Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Draws {
		total = total.Add(d.Quantity)
	}
	return total
}

// Satisfied indica si el plan cubre todo lo requerido.
func (p Plan) Satisfied() bool { return !p.Missing.IsPositive() }

// OrderLocations orden total de extracción: primero las ubicaciones con prioridad activa
// (prioridad, código, id), luego las demás (código, id). Mismo input, mismo orden.
func OrderLocations(locations []entity.Location, priorities []entity.LocationPriority) []string {
	best := make(map[string]int, len(priorities))
	for _, p := range priorities {
		if !p.Active {
			continue
		}
		if cur, ok := best[p.LocationID]; !ok || p.Priority < cur {
			best[p.LocationID] = p.Priority
		}
	}

	sorted := make([]entity.Location, len(locations))
	copy(sorted, locations)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		pa, hasA := best[a.ID]
		pb, hasB := best[b.ID]
		if hasA != hasB {
			return hasA
		}
		if hasA && pa != pb {
			return pa < pb
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.ID < b.ID
	})

	ids := make([]string, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, l := range sorted {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		ids = append(ids, l.ID)
	}
	return ids
}

// Allocate reparte requiredQty de forma voraz siguiendo orderedLocationIDs: toma
// min(disponible, restante) de cada candidata hasta cubrir o agotar. Sin retroceso:
// la primera prioridad va primero aunque se toquen más ubicaciones.
func Allocate(requiredQty decimal.Decimal, stocks []entity.LocationStock, orderedLocationIDs []string) Plan {
	required := quantity.Round(requiredQty)
	if !required.IsPositive() {
		return Plan{Draws: []Draw{}, Missing: decimal.Zero}
	}

	position := make(map[string]int, len(orderedLocationIDs))
	for i, id := range orderedLocationIDs {
		if _, ok := position[id]; !ok {
			position[id] = i
		}
	}

	candidates := make([]entity.LocationStock, 0, len(stocks))
	for _, s := range stocks {
		s.Available = quantity.Round(s.Available)
		if s.Available.IsPositive() {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		pa, inA := position[a.LocationID]
		pb, inB := position[b.LocationID]
		if inA != inB {
			return inA
		}
		if inA {
			return pa < pb
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.LocationID < b.LocationID
	})

	remaining := required
	draws := make([]Draw, 0, len(candidates))
	for _, c := range candidates {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(c.Available, remaining)
		draws = append(draws, Draw{LocationID: c.LocationID, Quantity: take})
		remaining = quantity.Round(remaining.Sub(take))
	}
	return Plan{Draws: draws, Missing: quantity.NonNegative(remaining)}
}

// IngredientRequirement cantidad requerida de un ingrediente para un lote.
type IngredientRequirement struct {
	IngredientID string
	RequiredQty  decimal.Decimal
}

// ComputeBatchIngredientRequirements escala cada línea activa por producedQty/recipeYieldQty
// (0 si la receta no declara rendimiento), suma duplicados, redondea y descarta lo <= 0.
// Salida ordenada por ingrediente.
func ComputeBatchIngredientRequirements(producedQty, recipeYieldQty decimal.Decimal, lines []entity.RecipeLine) []IngredientRequirement {
	scale := decimal.Zero
	if recipeYieldQty.IsPositive() {
		scale = producedQty.Div(recipeYieldQty)
	}

	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, l := range lines {
		if !l.Active {
			continue
		}
		if _, ok := totals[l.IngredientID]; !ok {
			order = append(order, l.IngredientID)
			totals[l.IngredientID] = decimal.Zero
		}
		totals[l.IngredientID] = totals[l.IngredientID].Add(l.Quantity.Mul(scale))
	}
	sort.Strings(order)

	out := make([]IngredientRequirement, 0, len(order))
	for _, id := range order {
		req := quantity.Round(totals[id])
		if !req.IsPositive() {
			continue
		}
		out = append(out, IngredientRequirement{IngredientID: id, RequiredQty: req})
	}
	return out
}
