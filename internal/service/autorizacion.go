package service

import (
	"fmt"

	"ceats/internal/middleware"
	"ceats/internal/model"
)

// autorizarSucursal is THE tenant-scope check: every branch-scoped operation
// funnels through it so the admin/non-admin branching cannot drift between
// routes.
//
//   - admin: may operate on any sucursal of their own restaurante.
//   - empleado/gerente: may operate only on their own sucursal.
//
// Any mismatch is ErrNoAutorizado; there is no partial access.
func autorizarSucursal(claims *middleware.JWTClaims, suc *model.Sucursal) error {
	if claims == nil {
		// Internal callers (webhook ingestion) resolve the tenant themselves.
		return nil
	}

	if claims.Rol == model.RolAdmin {
		if suc.RestauranteID.String() != claims.RestauranteID {
			return fmt.Errorf("%w: la sucursal no pertenece a su restaurante", ErrNoAutorizado)
		}
		return nil
	}

	if claims.SucursalID == nil || *claims.SucursalID != suc.ID.String() {
		return fmt.Errorf("%w: su rol %s solo permite operar sobre su propia sucursal", ErrNoAutorizado, claims.Rol)
	}
	return nil
}

// autorizarRestaurante guards restaurant-level resources (admin only).
func autorizarRestaurante(claims *middleware.JWTClaims, restauranteID string) error {
	if claims.Rol != model.RolAdmin || claims.RestauranteID != restauranteID {
		return fmt.Errorf("%w: el recurso pertenece a otro restaurante", ErrNoAutorizado)
	}
	return nil
}
