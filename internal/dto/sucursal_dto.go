package dto

type CrearSucursalRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=120"`
	Email     string  `json:"email"     validate:"required,email"`
	Telefono  *string `json:"telefono"  validate:"omitempty,min=7,max=20"`
	Direccion *string `json:"direccion" validate:"omitempty,max=250"`
	Ciudad    *string `json:"ciudad"    validate:"omitempty,max=100"`
}

type ActualizarSucursalRequest struct {
	Nombre    string  `json:"nombre"    validate:"omitempty,min=2,max=120"`
	Telefono  *string `json:"telefono"  validate:"omitempty,min=7,max=20"`
	Direccion *string `json:"direccion" validate:"omitempty,max=250"`
	Ciudad    *string `json:"ciudad"    validate:"omitempty,max=100"`
}

type VerificarSucursalRequest struct {
	Codigo string `json:"codigo" validate:"required,len=6,numeric"`
}

type SucursalResponse struct {
	ID            string  `json:"sucursal_id"`
	RestauranteID string  `json:"restaurante_id"`
	Nombre        string  `json:"nombre"`
	Email         string  `json:"email"`
	Telefono      *string `json:"telefono"`
	Direccion     *string `json:"direccion"`
	Ciudad        *string `json:"ciudad"`
	Verificada    bool    `json:"verificada"`
	Activa        bool    `json:"activa"`
}

// VerificarSucursalResponse reports the auto-created empleado account so the
// frontend can show the temp-password hint.
type VerificarSucursalResponse struct {
	Success      bool             `json:"success"`
	Sucursal     SucursalResponse `json:"sucursal"`
	EmpleadoID   string           `json:"empleado_id"`
	EmpleadoMail string           `json:"empleado_email"`
	Mensaje      string           `json:"mensaje"`
}
