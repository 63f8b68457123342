package dto

// RegistroRestauranteroRequest creates a restaurante together with its admin
// user in a single transaction. This is the only unauthenticated write.
type RegistroRestauranteroRequest struct {
	NombreRestaurante string  `json:"nombre_restaurante" validate:"required,min=2,max=120"`
	RazonSocial       *string `json:"razon_social"       validate:"omitempty,max=180"`
	EmailRestaurante  string  `json:"email_restaurante"  validate:"required,email"`
	Telefono          *string `json:"telefono"           validate:"omitempty,min=7,max=20"`
	Direccion         *string `json:"direccion"          validate:"omitempty,max=250"`

	// Admin account
	Nombre    string `json:"nombre"    validate:"required,min=2,max=100"`
	Apellidos string `json:"apellidos" validate:"required,min=2,max=100"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8"`
}

type RegistroRestauranteroResponse struct {
	Success       bool   `json:"success"`
	RestauranteID string `json:"restaurante_id"`
	UsuarioID     string `json:"usuario_id"`
	Mensaje       string `json:"mensaje"`
}

type RestauranteResponse struct {
	ID          string  `json:"restaurante_id"`
	Nombre      string  `json:"nombre"`
	RazonSocial *string `json:"razon_social"`
	Email       string  `json:"email"`
	Telefono    *string `json:"telefono"`
	Direccion   *string `json:"direccion"`
	Activo      bool    `json:"activo"`
}

type ActualizarRestauranteRequest struct {
	Nombre      string  `json:"nombre"       validate:"omitempty,min=2,max=120"`
	RazonSocial *string `json:"razon_social" validate:"omitempty,max=180"`
	Telefono    *string `json:"telefono"     validate:"omitempty,min=7,max=20"`
	Direccion   *string `json:"direccion"    validate:"omitempty,max=250"`
}
