package dto

// ─── Integration management ──────────────────────────────────────────────────

type ConfigurarIntegracionRequest struct {
	PhoneNumberID string  `json:"phone_number_id" validate:"required,min=5,max=40"`
	WabaID        string  `json:"waba_id"         validate:"required,min=5,max=40"`
	AccessToken   string  `json:"access_token"    validate:"required,min=20"`
	VerifyToken   string  `json:"verify_token"    validate:"required,min=8,max=120"`
	SucursalID    *string `json:"sucursal_id"     validate:"omitempty,uuid"`
}

// IntegracionResponse never echoes the access token, not even encrypted.
type IntegracionResponse struct {
	ID            string  `json:"integracion_id"`
	RestauranteID string  `json:"restaurante_id"`
	SucursalID    *string `json:"sucursal_id"`
	PhoneNumberID string  `json:"phone_number_id"`
	WabaID        string  `json:"waba_id"`
	ApiVersion    string  `json:"api_version"`
	Estado        string  `json:"estado"`
	UltimoError   *string `json:"ultimo_error,omitempty"`
}

type SignupIniciarResponse struct {
	State  string `json:"state"`
	Expira int    `json:"expira_segundos"`
}

type SignupCompletarRequest struct {
	State string `json:"state" validate:"required,min=16"`
}

// ─── Meta webhook payload (inbound) ──────────────────────────────────────────
// Shapes follow the WhatsApp Cloud API webhook schema; only the fields the
// pipeline reads are declared.

type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Metadata         WebhookMetadata   `json:"metadata"`
	Contacts         []WebhookContact  `json:"contacts"`
	Messages         []WebhookMessage  `json:"messages"`
}

type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WebhookContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type WebhookMessage struct {
	From      string        `json:"from"`
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"`
	Type      string        `json:"type"`
	Text      *WebhookText  `json:"text,omitempty"`
	Order     *WebhookOrder `json:"order,omitempty"`
}

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookOrder struct {
	CatalogID    string                `json:"catalog_id"`
	Text         string                `json:"text"`
	ProductItems []WebhookProductItem  `json:"product_items"`
}

// WebhookProductItem prices arrive in thousandths of the currency unit.
type WebhookProductItem struct {
	ProductRetailerID string `json:"product_retailer_id"`
	Quantity          int    `json:"quantity"`
	ItemPrice         int64  `json:"item_price"`
	Currency          string `json:"currency"`
}
