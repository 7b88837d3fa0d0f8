package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity quién opera: usuario, empresa, rol y sedes habilitadas.
// SiteIDs vacío significa todas las sedes de la empresa.
type Identity struct {
	UserID    string
	CompanyID string
	Role      string // "admin" | "bodeguero" | "vendedor"
	SiteIDs   []string
}

// CanOperate indica si la identidad puede mover stock en la sede.
func (i Identity) CanOperate(siteID string) bool {
	if len(i.SiteIDs) == 0 {
		return true
	}
	for _, s := range i.SiteIDs {
		if s == siteID {
			return true
		}
	}
	return false
}

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Role y Sites permiten decidir permisos sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string   `json:"user_id"`
	CompanyID string   `json:"company_id"`
	Role      string   `json:"role"`
	Sites     []string `json:"sites,omitempty"`
}

// Generate genera un token JWT firmado HS256 para la identidad.
func Generate(secret, issuer string, expMinutes int, id Identity) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    id.UserID,
		CompanyID: id.CompanyID,
		Role:      id.Role,
		Sites:     id.SiteIDs,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve la identidad del token.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" {
		return Identity{}, fmt.Errorf("jwt: token sin user_id")
	}
	return Identity{
		UserID:    claims.UserID,
		CompanyID: claims.CompanyID,
		Role:      claims.Role,
		SiteIDs:   claims.Sites,
	}, nil
}
