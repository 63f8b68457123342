package dto

type CrearUsuarioRequest struct {
	Email     string  `json:"email"       validate:"required,email"`
	Nombre    string  `json:"nombre"      validate:"required,min=2,max=100"`
	Apellidos string  `json:"apellidos"   validate:"required,min=2,max=100"`
	Password  string  `json:"password"    validate:"required,min=8"`
	Rol       string  `json:"rol"         validate:"required,oneof=admin empleado gerente"`
	// SucursalID is required for empleado/gerente and must be empty for admin;
	// the cross-field rule lives in the service (needs tenant context).
	SucursalID *string `json:"sucursal_id" validate:"omitempty,uuid"`
}

type ActualizarUsuarioRequest struct {
	Nombre     string  `json:"nombre"      validate:"omitempty,min=2,max=100"`
	Apellidos  string  `json:"apellidos"   validate:"omitempty,min=2,max=100"`
	Rol        string  `json:"rol"         validate:"omitempty,oneof=admin empleado gerente"`
	SucursalID *string `json:"sucursal_id" validate:"omitempty,uuid"`
	Password   string  `json:"password"    validate:"omitempty,min=8"`
}

type UsuarioResponse struct {
	ID              string  `json:"usuario_id"`
	Email           string  `json:"email"`
	Nombre          string  `json:"nombre"`
	Apellidos       string  `json:"apellidos"`
	Rol             string  `json:"rol"`
	RestauranteID   string  `json:"restaurante_id"`
	SucursalID      *string `json:"sucursal_id"`
	EmailVerificado bool    `json:"email_verificado"`
	Activo          bool    `json:"activo"`
	PrimerLogin     bool    `json:"primer_login"`
}
