// Package cart aggregates the products of one in-progress sale. Lines are
// keyed by product id, keep their first-added order for stable display, and
// hold prices in cents snapshotted at add time. The snapshot is for the
// operator's eyes only; submission sends quantities and lets the server
// price the sale.
package cart

import (
	"sync"

	"github.com/counterdesk/counterdesk/internal/models"
	"github.com/counterdesk/counterdesk/internal/money"
)

type Line struct {
	ProductID int64
	Name      string
	UnitPrice money.Cents
	Quantity  int
	Total     money.Cents
}

type Cart struct {
	mu    sync.Mutex
	lines []*Line
	index map[int64]*Line
}

func New() *Cart {
	return &Cart{index: make(map[int64]*Line)}
}

// AddProduct merges a product into the cart: an existing line gains one
// unit, a new product appends a line with quantity 1. At most one line per
// product id ever exists.
func (c *Cart) AddProduct(p *models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.index[p.ID]; ok {
		line.Quantity++
		line.Total = money.Cents(int64(line.Quantity)) * line.UnitPrice

		return
	}

	line := &Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
		Total:     p.Price,
	}

	c.lines = append(c.lines, line)
	c.index[p.ID] = line
}

// SetQuantity overwrites a line's quantity. Quantities below 1 and unknown
// products are rejected without mutating anything; removal is explicit via
// RemoveProduct, a zero-quantity line is never retained.
func (c *Cart) SetQuantity(productID int64, quantity int) bool {
	if quantity < 1 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.index[productID]
	if !ok {
		return false
	}

	line.Quantity = quantity
	line.Total = money.Cents(int64(quantity)) * line.UnitPrice

	return true
}

func (c *Cart) RemoveProduct(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[productID]; !ok {
		return
	}

	delete(c.index, productID)

	for i, line := range c.lines {
		if line.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)

			break
		}
	}
}

// Total sums the retained line totals; an empty cart totals zero.
func (c *Cart) Total() money.Cents {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total money.Cents

	for _, line := range c.lines {
		total += line.Total
	}

	return total
}

// Lines returns the cart contents in first-added order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, len(c.lines))
	for i, line := range c.lines {
		lines[i] = *line
	}

	return lines
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lines)
}

// Items converts the cart into the submission payload: (product, quantity)
// pairs only, never prices.
func (c *Cart) Items() []models.SaleItemInput {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]models.SaleItemInput, len(c.lines))
	for i, line := range c.lines {
		items[i] = models.SaleItemInput{ProductID: line.ProductID, Quantity: line.Quantity}
	}

	return items
}

// Clear empties the cart after a confirmed submission or an explicit reset.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.index = make(map[int64]*Line)
}
