package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx). Solo inserta.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, sequence, transaction_id, product_id, site_id, location_id, kind, quantity,
	input_quantity, input_unit, conversion_factor, unit_cost, total_cost, reference, note, created_by, created_at`

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Kind == entity.KindUnknown {
		return domain.NewValidationError("kind", "tipo de movimiento sin definir")
	}
	query := `INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Sequence, m.TransactionID, m.ProductID, m.SiteID, nullable(m.LocationID), m.Kind.String(), m.Quantity,
		m.InputQuantity, m.InputUnit, m.ConversionFactor, m.UnitCost, m.TotalCost, m.Reference, m.Note,
		nullable(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByProduct lista movimientos de un producto en un rango de fechas, en orden del libro.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY sequence DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SumForScope suma firmada del libro; el alcance de sede incluye sus ubicaciones.
func (r *MovementRepo) SumForScope(ctx context.Context, productID string, scope entity.Scope) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM inventory_movements WHERE product_id = $1 AND site_id = $2`
	args := []any{productID, scope.SiteID}
	if scope.IsLocation() {
		query += ` AND location_id = $3`
		args = append(args, scope.LocationID)
	}
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return total, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var loc, createdBy *string
	var kind string
	if err := row.Scan(&m.ID, &m.Sequence, &m.TransactionID, &m.ProductID, &m.SiteID, &loc, &kind, &m.Quantity,
		&m.InputQuantity, &m.InputUnit, &m.ConversionFactor, &m.UnitCost, &m.TotalCost, &m.Reference, &m.Note,
		&createdBy, &m.CreatedAt); err != nil {
		return nil, err
	}
	k, err := entity.ParseMovementKind(kind)
	if err != nil {
		return nil, err
	}
	m.Kind = k
	m.LocationID = deref(loc)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}
