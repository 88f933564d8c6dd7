// Package catalog is the read/write client for the remote product
// directory. It holds no cache and never retries; every failure surfaces
// once to the caller.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/counterdesk/counterdesk/internal/gateway"
	"github.com/counterdesk/counterdesk/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

// Doer is the slice of the gateway the catalog needs.
type Doer interface {
	Do(ctx context.Context, method, path string, body any, opts ...gateway.Option) (*http.Response, error)
}

type Client struct {
	gw       Doer
	sanitize *bluemonday.Policy
}

func NewClient(gw Doer) *Client {
	return &Client{
		gw: gw,
		// Remote free-text fields end up in rendered views; strip any
		// markup they carry.
		sanitize: bluemonday.StrictPolicy(),
	}
}

func (c *Client) List(ctx context.Context, skip, limit int) ([]models.Product, error) {

	path := fmt.Sprintf("/products/?skip=%d&limit=%d", skip, limit)

	resp, err := c.gw.Do(ctx, http.MethodGet, path, nil, gateway.WithRoute("/products/"))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, gateway.APIError(resp)
	}

	var products []models.Product

	if err := gateway.DecodeJSON(resp, &products); err != nil {
		return nil, err
	}

	c.sanitizeAll(products)

	return products, nil
}

// Search matches name and barcode server-side. A blank query returns an
// empty result without a network call, so a cleared search box costs
// nothing per keystroke.
func (c *Client) Search(ctx context.Context, query string) ([]models.Product, error) {

	if strings.TrimSpace(query) == "" {
		return []models.Product{}, nil
	}

	path := "/products/search/?q=" + url.QueryEscape(query)

	resp, err := c.gw.Do(ctx, http.MethodGet, path, nil, gateway.WithRoute("/products/search/"))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, gateway.APIError(resp)
	}

	var products []models.Product

	if err := gateway.DecodeJSON(resp, &products); err != nil {
		return nil, err
	}

	c.sanitizeAll(products)

	return products, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*models.Product, error) {

	resp, err := c.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, gateway.WithRoute("/products/{id}"))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, gateway.APIError(resp)
	}

	var product models.Product

	if err := gateway.DecodeJSON(resp, &product); err != nil {
		return nil, err
	}

	c.sanitizeProduct(&product)

	return &product, nil
}

func (c *Client) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	resp, err := c.gw.Do(ctx, http.MethodPost, "/products/", req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, gateway.APIError(resp)
	}

	var product models.Product

	if err := gateway.DecodeJSON(resp, &product); err != nil {
		return nil, err
	}

	c.sanitizeProduct(&product)

	return &product, nil
}

func (c *Client) Update(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {

	resp, err := c.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), req, gateway.WithRoute("/products/{id}"))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, gateway.APIError(resp)
	}

	var product models.Product

	if err := gateway.DecodeJSON(resp, &product); err != nil {
		return nil, err
	}

	c.sanitizeProduct(&product)

	return &product, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {

	resp, err := c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, gateway.WithRoute("/products/{id}"))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gateway.APIError(resp)
	}

	gateway.DrainBody(resp)

	return nil
}

func (c *Client) sanitizeAll(products []models.Product) {
	for i := range products {
		c.sanitizeProduct(&products[i])
	}
}

func (c *Client) sanitizeProduct(p *models.Product) {
	p.Name = c.sanitize.Sanitize(p.Name)
	p.ShortName = c.sanitize.Sanitize(p.ShortName)
	p.Location = c.sanitize.Sanitize(p.Location)
	p.Category = c.sanitize.Sanitize(p.Category)
	p.Brand = c.sanitize.Sanitize(p.Brand)
}
