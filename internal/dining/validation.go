package dining

import (
	"context"
	"strings"
)

func ValidateTableCreate(ctx context.Context, req TableCreateRequest) []string {
	var errors []string

	if req.Number <= 0 {
		errors = append(errors, "number must be a positive integer")
	}
	if req.Shape != "" && !ValidShape(req.Shape) {
		errors = append(errors, "invalid shape")
	}

	return errors
}

func ValidateOrderCreate(ctx context.Context, req OrderCreateRequest) []string {
	var errors []string

	if req.TableNumber <= 0 {
		errors = append(errors, "table_number must be a positive integer")
	}
	if len(req.Items) == 0 {
		errors = append(errors, "at least one item is required")
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.MenuItemID) == "" {
			errors = append(errors, "menu_item_id is required")
		}
		if item.Quantity < 1 {
			errors = append(errors, "quantity must be positive")
		}
	}
	if req.TotalAmount <= 0 {
		errors = append(errors, "total_amount must be positive")
	}

	return errors
}

func ValidateOrderStatus(ctx context.Context, req OrderStatusRequest) []string {
	var errors []string

	if !ValidStatus(req.Status) {
		errors = append(errors, "invalid status")
	}

	return errors
}

func ValidatePaymentStatus(ctx context.Context, req PaymentStatusRequest) []string {
	var errors []string

	if !ValidPaymentStatus(req.PaymentStatus) {
		errors = append(errors, "invalid payment_status")
	}

	return errors
}

func ValidateFloorPlanCreate(ctx context.Context, req FloorPlanCreateRequest) []string {
	var errors []string

	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, "name is required")
	}

	return errors
}
