package transport

type SaveIntakeRequest struct {
	Token   string                 `json:"token"`
	Answers map[string]interface{} `json:"answers"`
	Submit  bool                   `json:"submit"`
}

type SubmitReviewRequest struct {
	Token        string `json:"token"`
	Action       string `json:"action"`
	Notes        string `json:"notes"`
	ReferenceURL string `json:"reference_url"`
}

type CreateOrderRequest struct {
	CustomerName    string   `json:"customer_name"`
	CustomerEmail   string   `json:"customer_email"`
	BusinessName    string   `json:"business_name"`
	Phone           string   `json:"phone"`
	Tier            int      `json:"tier"`
	MaintenancePlan string   `json:"maintenance_plan"`
	AddOns          []string `json:"add_ons"`
	TotalAmount     int64    `json:"total_amount"`
	DepositAmount   int64    `json:"deposit_amount"`
	PortalToken     string   `json:"portal_token"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
	TTL      int    `json:"ttl_seconds"`
}
