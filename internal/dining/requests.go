package dining

type TableCreateRequest struct {
	Number   int      `json:"number"`
	Shape    string   `json:"shape,omitempty"`
	Position Position `json:"position,omitempty"`
}

type TablePositionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TableShapeRequest struct {
	Shape string `json:"shape"`
}

type OrderCreateRequest struct {
	TableNumber int                `json:"table_number"`
	Items       []OrderItemRequest `json:"items"`
	TotalAmount float64            `json:"total_amount"`
}

type OrderItemRequest struct {
	MenuItemID      string            `json:"menu_item_id"`
	Name            string            `json:"name,omitempty"`
	UnitPrice       float64           `json:"unit_price"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

type OrderStatusRequest struct {
	Status string `json:"status"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

type SpecialRequestRequest struct {
	Request string `json:"request"`
}

type AssistanceRequest struct {
	RequestType string `json:"request_type"`
}

type FloorPlanCreateRequest struct {
	Name      string   `json:"name"`
	TableIDs  []string `json:"table_ids,omitempty"`
	IsDefault bool     `json:"is_default,omitempty"`
}

type FloorPlanUpdateRequest struct {
	Name      string   `json:"name,omitempty"`
	TableIDs  []string `json:"table_ids,omitempty"`
	IsDefault *bool    `json:"is_default,omitempty"`
}
