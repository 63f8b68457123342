package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

// CambiarPasswordRequest serves both the forced first-login change (temp
// password issued during branch verification) and a regular password change.
type CambiarPasswordRequest struct {
	Email          string `json:"email"           validate:"required,email"`
	PasswordActual string `json:"password_actual" validate:"required,min=4"`
	PasswordNueva  string `json:"password_nueva"  validate:"required,min=8"`
}

type VerificarEmailRequest struct {
	Email  string `json:"email"  validate:"required,email"`
	Codigo string `json:"codigo" validate:"required,len=6,numeric"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// LoginResponse mirrors what the dashboard stores client-side. When the
// account still carries a temp password, Token is empty and
// RequiereCambioPassword is true.
type LoginResponse struct {
	Success                bool    `json:"success"`
	Token                  string  `json:"token,omitempty"`
	UsuarioID              string  `json:"usuario_id"`
	Email                  string  `json:"email"`
	Rol                    string  `json:"rol"`
	RestauranteID          string  `json:"restaurante_id"`
	SucursalID             *string `json:"sucursal_id"`
	Nombre                 string  `json:"nombre"`
	Apellidos              string  `json:"apellidos"`
	RequiereCambioPassword bool    `json:"requiere_cambio_password,omitempty"`
}
