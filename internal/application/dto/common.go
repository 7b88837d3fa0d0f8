package dto

// Límites de los listados de historial.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// PageRequest paginación de los listados de historial. Limit cero toma el valor por defecto.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// WithDefaults devuelve la página con el límite por defecto aplicado.
func (p PageRequest) WithDefaults() PageRequest {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	return p
}

// PageResponse metadatos de página; Total cuenta los elementos devueltos en esta página.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// MovementListResponse página de movimientos de un producto.
type MovementListResponse struct {
	Movements []MovementDTO `json:"movements"`
	Page      PageResponse  `json:"page"`
}

// CostEventListResponse página de la auditoría de costos.
type CostEventListResponse struct {
	CostEvents []*CostEventDTO `json:"cost_events"`
	Page       PageResponse    `json:"page"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StepErrorResponse error de escritura del libro con el paso que no se completó.
type StepErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Step    string `json:"step"`
}
