// Package sales converts a cart into a server-side sale and reconciles the
// server's authoritative record back into displayed state.
package sales

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/counterdesk/counterdesk/internal/cart"
	apperrors "github.com/counterdesk/counterdesk/internal/errors"
	"github.com/counterdesk/counterdesk/internal/gateway"
	"github.com/counterdesk/counterdesk/internal/models"
)

// Doer is the slice of the gateway the sales client needs.
type Doer interface {
	Do(ctx context.Context, method, path string, body any, opts ...gateway.Option) (*http.Response, error)
}

type State int

const (
	StateIdle State = iota
	StateSubmitting
)

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

// Submitter owns the submission state machine for one sale-entry session:
// Idle -> Submitting -> settle back to Idle with an outcome. While
// Submitting, further Submit and Update calls are locked out so a
// double-click cannot create the sale twice.
type Submitter struct {
	gw Doer

	mu      sync.Mutex
	state   State
	outcome Outcome
}

func NewSubmitter(gw Doer) *Submitter {
	return &Submitter{gw: gw}
}

func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// LastOutcome reports how the most recent submission settled.
func (s *Submitter) LastOutcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.outcome
}

func (s *Submitter) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return apperrors.SubmitInFlightError("A submission is already in flight")
	}

	s.state = StateSubmitting

	return nil
}

func (s *Submitter) settle(outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateIdle
	s.outcome = outcome
}

// Submit posts the cart as a new sale. The payload carries (product,
// quantity) pairs only; the server prices the sale. On success the cart is
// cleared and the server's Sale, including its total_price, is returned
// verbatim. On any failure the cart is left untouched for edit or retry.
func (s *Submitter) Submit(ctx context.Context, c *cart.Cart) (*models.Sale, error) {

	if c.Len() == 0 {
		return nil, apperrors.EmptyCartError("Add at least one product to the sale")
	}

	if err := s.begin(); err != nil {
		return nil, err
	}

	sale, err := s.send(ctx, http.MethodPost, "/sales/", c.Items())
	if err != nil {
		s.settle(OutcomeFailed)

		return nil, err
	}

	c.Clear()
	s.settle(OutcomeSucceeded)

	return sale, nil
}

// Update replaces a sale's lines wholesale (PUT semantics). Lines absent
// from items are discarded by the server, so callers resend every
// surviving line, not just the changed ones.
func (s *Submitter) Update(ctx context.Context, saleID int64, items []models.SaleItemInput) (*models.Sale, error) {

	if len(items) == 0 {
		return nil, apperrors.EmptyCartError("A sale must keep at least one product")
	}

	if err := s.begin(); err != nil {
		return nil, err
	}

	sale, err := s.send(ctx, http.MethodPut, fmt.Sprintf("/sales/%d", saleID), items, gateway.WithRoute("/sales/{id}"))
	if err != nil {
		s.settle(OutcomeFailed)

		return nil, err
	}

	s.settle(OutcomeSucceeded)

	return sale, nil
}

func (s *Submitter) send(ctx context.Context, method, path string, items []models.SaleItemInput, opts ...gateway.Option) (*models.Sale, error) {

	resp, err := s.gw.Do(ctx, method, path, &models.SaleRequest{Products: items}, opts...)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := gateway.ResponseDetail(resp)

		if resp.StatusCode == http.StatusNotFound {
			return nil, apperrors.NotFoundError("Sale not found").WithDetail(detail)
		}

		return nil, apperrors.SaleRejectedError("The server rejected the sale").WithDetail(detail)
	}

	var sale models.Sale

	// A parse failure after a 2xx is a hard failure: the sale may exist
	// server-side, the operator verifies via a fresh listing.
	if err := gateway.DecodeJSON(resp, &sale); err != nil {
		return nil, err
	}

	return &sale, nil
}

// Client reads and deletes confirmed sales for the dashboard and detail
// views.
type Client struct {
	gw Doer
}

func NewClient(gw Doer) *Client {
	return &Client{gw: gw}
}

func (c *Client) List(ctx context.Context, skip, limit int) ([]models.Sale, error) {

	path := fmt.Sprintf("/sales/?skip=%d&limit=%d", skip, limit)

	resp, err := c.gw.Do(ctx, http.MethodGet, path, nil, gateway.WithRoute("/sales/"))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, gateway.APIError(resp)
	}

	var sales []models.Sale

	if err := gateway.DecodeJSON(resp, &sales); err != nil {
		return nil, err
	}

	return sales, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*models.Sale, error) {

	resp, err := c.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/sales/%d", id), nil, gateway.WithRoute("/sales/{id}"))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, gateway.APIError(resp)
	}

	var sale models.Sale

	if err := gateway.DecodeJSON(resp, &sale); err != nil {
		return nil, err
	}

	return &sale, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {

	resp, err := c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/sales/%d", id), nil, gateway.WithRoute("/sales/{id}"))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gateway.APIError(resp)
	}

	gateway.DrainBody(resp)

	return nil
}
