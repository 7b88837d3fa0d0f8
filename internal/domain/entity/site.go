package entity

import "time"

// Site sede o bodega donde se almacena inventario. CostBasis es su política de costo.
type Site struct {
	ID        string
	CompanyID string
	Name      string
	CostBasis CostBasis
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location ubicación física dentro de una sede (estante, cámara, pasillo).
type Location struct {
	ID     string
	SiteID string
	Code   string
	Label  string
	Active bool
}

// LocationPriority preferencia configurada por un administrador para el orden de extracción.
// Menor Priority se extrae primero.
type LocationPriority struct {
	LocationID string
	Priority   int
	Active     bool
}
