package domain

import "time"

// Page is one page of a list endpoint. Page numbers are 1-based.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

type UnitOfMeasure struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Precision *int      `json:"precision,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type UnitOfMeasureInput struct {
	Name      string `json:"name" validate:"required"`
	Code      string `json:"code" validate:"required"`
	Precision *int   `json:"precision,omitempty" validate:"omitempty,min=0,max=6"`
}

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	CategoryID   string    `json:"categoryId,omitempty"`
	CategoryName string    `json:"categoryName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProductInput struct {
	Name       string `json:"name" validate:"required"`
	Code       string `json:"code" validate:"required"`
	CategoryID string `json:"categoryId,omitempty"`
}

type Variant struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName,omitempty"`
	UomID       string    `json:"uomId"`
	UomName     string    `json:"uomName,omitempty"`
	SKU         string    `json:"sku"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
}

type VariantInput struct {
	ProductID string  `json:"productId" validate:"required"`
	UomID     string  `json:"uomId" validate:"required"`
	SKU       string  `json:"sku" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID           string      `json:"id"`
	Number       string      `json:"number"`
	CustomerName string      `json:"customerName"`
	Status       OrderStatus `json:"status"`
	Total        float64     `json:"total"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type OrderInput struct {
	Number       string      `json:"number" validate:"required"`
	CustomerName string      `json:"customerName" validate:"required"`
	Status       OrderStatus `json:"status" validate:"omitempty,oneof=pending confirmed shipped cancelled"`
	Total        float64     `json:"total" validate:"gte=0"`
}
