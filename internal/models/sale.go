package models

import (
	"time"

	"github.com/counterdesk/counterdesk/internal/money"
)

// SaleProduct is one confirmed line of a server-side sale. Prices are the
// server's, captured at sale time; the client never recomputes them.
type SaleProduct struct {
	ID           int64       `json:"id"`
	SaleID       int64       `json:"sale_id"`
	ProductID    int64       `json:"product_id"`
	Quantity     int         `json:"quantity"`
	ProductName  string      `json:"product_name"`
	ProductPrice money.Cents `json:"product_price"`
	UnitPrice    money.Cents `json:"unit_price"`
	Total        money.Cents `json:"total"`
}

type Sale struct {
	ID         int64         `json:"id"`
	Date       time.Time     `json:"date"`
	TotalPrice money.Cents   `json:"total_price"`
	Products   []SaleProduct `json:"products"`
}

// SaleItemInput is the only shape the client sends for a sale line. The
// server is authoritative for pricing, so no amount field exists here.
type SaleItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type SaleRequest struct {
	Products []SaleItemInput `json:"products"`
}
