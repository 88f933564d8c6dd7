package models

import "github.com/counterdesk/counterdesk/internal/money"

// Product mirrors the remote catalog record. Price is in cents; the server
// owns every field, the front desk only renders and echoes them.
type Product struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	ShortName string      `json:"shortname"`
	Barcode   string      `json:"barcode"`
	Quantity  int64       `json:"quantity"`
	Price     money.Cents `json:"price"`
	Discount  int         `json:"discount"`
	Threshold int64       `json:"threshold"`
	Location  string      `json:"location"`
	Category  string      `json:"category"`
	Brand     string      `json:"brand"`
}

// LowStock reports whether the on-hand quantity has fallen below the
// product's reorder threshold.
func (p *Product) LowStock() bool {
	return p.Quantity < p.Threshold
}

type CreateProductRequest struct {
	Name      string      `json:"name" validate:"required,min=2,max=200"`
	ShortName string      `json:"shortname" validate:"required,max=50"`
	Barcode   string      `json:"barcode" validate:"required,max=64"`
	Quantity  int64       `json:"quantity" validate:"gte=0"`
	Price     money.Cents `json:"price" validate:"gte=0"`
	Discount  int         `json:"discount" validate:"gte=0,lte=100"`
	Threshold int64       `json:"threshold" validate:"gte=0"`
	Location  string      `json:"location" validate:"max=100"`
	Category  string      `json:"category" validate:"max=100"`
	Brand     string      `json:"brand" validate:"max=100"`
}

type UpdateProductRequest struct {
	Name      *string      `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	ShortName *string      `json:"shortname,omitempty" validate:"omitempty,max=50"`
	Barcode   *string      `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Quantity  *int64       `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Price     *money.Cents `json:"price,omitempty" validate:"omitempty,gte=0"`
	Discount  *int         `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	Threshold *int64       `json:"threshold,omitempty" validate:"omitempty,gte=0"`
	Location  *string      `json:"location,omitempty" validate:"omitempty,max=100"`
	Category  *string      `json:"category,omitempty" validate:"omitempty,max=100"`
	Brand     *string      `json:"brand,omitempty" validate:"omitempty,max=100"`
}
