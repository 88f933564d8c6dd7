// Package dashboard aggregates catalog and sales listings into the counts
// the dashboard view renders. Pure aggregation; every amount stays in
// cents and the sales value sums the server's totals.
package dashboard

import (
	"context"

	"github.com/counterdesk/counterdesk/internal/models"
	"github.com/counterdesk/counterdesk/internal/money"
)

type ProductLister interface {
	List(ctx context.Context, skip, limit int) ([]models.Product, error)
}

type SaleLister interface {
	List(ctx context.Context, skip, limit int) ([]models.Sale, error)
}

type Summary struct {
	TotalProducts int
	UnitsOnHand   int64
	LowStock      int
	TotalSales    int
	SalesValue    money.Cents
}

type Service struct {
	products ProductLister
	sales    SaleLister
	pageSize int
}

func NewService(products ProductLister, sales SaleLister) *Service {
	return &Service{products: products, sales: sales, pageSize: 100}
}

func (s *Service) Summarize(ctx context.Context) (*Summary, error) {

	products, err := s.products.List(ctx, 0, s.pageSize)
	if err != nil {
		return nil, err
	}

	saleRecords, err := s.sales.List(ctx, 0, s.pageSize)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalProducts: len(products),
		TotalSales:    len(saleRecords),
	}

	for _, p := range products {
		summary.UnitsOnHand += p.Quantity

		if p.LowStock() {
			summary.LowStock++
		}
	}

	for _, sale := range saleRecords {
		summary.SalesValue += sale.TotalPrice
	}

	return summary, nil
}
