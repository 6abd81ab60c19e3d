package models

const (
	ProviderPaystack    = "paystack"
	ProviderFlutterwave = "flutterwave"
)

type InitializePaymentRequest struct {
	OrderID  string `json:"orderId" validate:"required"`
	Provider string `json:"provider" validate:"required,oneof=paystack flutterwave"`
}

// PaymentInit is what a gateway needs to start a checkout.
type PaymentInit struct {
	Reference   string
	Amount      float64
	Email       string
	Name        string
	CallbackURL string
	OrderID     string
}

type PaymentSession struct {
	Provider         string `json:"provider"`
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode,omitempty"`
}

type PaymentVerification struct {
	Provider      string  `json:"provider"`
	Reference     string  `json:"reference"`
	TransactionID string  `json:"transactionId"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Email         string  `json:"email,omitempty"`
	PaidAt        string  `json:"paidAt,omitempty"`
	Successful    bool    `json:"successful"`
}

// PaystackResponse is the envelope Paystack wraps every response in.
type PaystackResponse struct {
	Status  bool                   `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// FlutterwaveResponse is the envelope Flutterwave wraps every response in.
type FlutterwaveResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// WebhookEvent is the common shape of Paystack and Flutterwave callbacks.
type WebhookEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}
