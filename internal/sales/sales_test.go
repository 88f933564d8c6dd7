package sales_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/counterdesk/counterdesk/internal/cart"
	apperrors "github.com/counterdesk/counterdesk/internal/errors"
	"github.com/counterdesk/counterdesk/internal/gateway"
	"github.com/counterdesk/counterdesk/internal/models"
	"github.com/counterdesk/counterdesk/internal/money"
	"github.com/counterdesk/counterdesk/internal/sales"
	"github.com/counterdesk/counterdesk/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	productA = &models.Product{ID: 1, Name: "Espresso Beans", Price: 500}
	productB = &models.Product{ID: 2, Name: "Paper Cups", Price: 250}
)

func newGateway(t *testing.T, handler http.HandlerFunc) *gateway.Gateway {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("tok"))

	return gateway.New(store, server.URL, 5*time.Second)
}

func filledCart() *cart.Cart {
	c := cart.New()
	c.AddProduct(productA)
	c.AddProduct(productA)
	c.AddProduct(productB)

	return c
}

func TestSubmit(t *testing.T) {
	t.Run("Failure - Empty Cart Never Reaches The Network", func(t *testing.T) {
		// Arrange
		hits := 0
		submitter := sales.NewSubmitter(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			hits++
		}))

		// Act
		_, err := submitter.Submit(t.Context(), cart.New())

		// Assert
		require.Error(t, err)
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeEmptyCart, appErr.Code)
		assert.Zero(t, hits)
		assert.Equal(t, sales.StateIdle, submitter.State())
	})

	t.Run("Success - Payload Carries Quantities Only", func(t *testing.T) {
		// Arrange
		var rawBody []byte

		submitter := sales.NewSubmitter(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/sales/", r.URL.Path)
			rawBody, _ = io.ReadAll(r.Body)

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(models.Sale{
				ID:         31,
				Date:       time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC),
				TotalPrice: 1175, // server applied a discount; client must not recompute
				Products: []models.SaleProduct{
					{ID: 1, SaleID: 31, ProductID: 1, Quantity: 2, ProductName: "Espresso Beans", ProductPrice: 500, UnitPrice: 475, Total: 950},
					{ID: 2, SaleID: 31, ProductID: 2, Quantity: 1, ProductName: "Paper Cups", ProductPrice: 250, UnitPrice: 225, Total: 225},
				},
			})
		}))

		c := filledCart()

		// Act
		sale, err := submitter.Submit(t.Context(), c)

		// Assert
		require.NoError(t, err)

		var payload map[string][]map[string]any
		require.NoError(t, json.Unmarshal(rawBody, &payload))
		require.Len(t, payload["products"], 2)

		for _, line := range payload["products"] {
			assert.Len(t, line, 2, "only product_id and quantity may be sent")
			assert.Contains(t, line, "product_id")
			assert.Contains(t, line, "quantity")
		}

		assert.Equal(t, int64(31), sale.ID)
		assert.Equal(t, money.Cents(1175), sale.TotalPrice, "total is the server's, not a client recomputation")
		assert.Zero(t, c.Len(), "cart is cleared after a confirmed sale")
		assert.Equal(t, sales.StateIdle, submitter.State())
		assert.Equal(t, sales.OutcomeSucceeded, submitter.LastOutcome())
	})

	t.Run("Failure - Rejection Leaves The Cart For Retry", func(t *testing.T) {
		// Arrange
		submitter := sales.NewSubmitter(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail": "quantity exceeds stock"}`))
		}))

		c := filledCart()

		// Act
		_, err := submitter.Submit(t.Context(), c)

		// Assert
		require.Error(t, err)
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeSaleRejected, appErr.Code)
		assert.Equal(t, "quantity exceeds stock", appErr.Detail)
		assert.Equal(t, 2, c.Len(), "cart must stay intact on failure")
		assert.Equal(t, sales.OutcomeFailed, submitter.LastOutcome())
	})

	t.Run("Failure - Second Submit Locked Out While In Flight", func(t *testing.T) {
		// Arrange
		release := make(chan struct{})
		entered := make(chan struct{})

		submitter := sales.NewSubmitter(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			close(entered)
			<-release
			_ = json.NewEncoder(w).Encode(models.Sale{ID: 1})
		}))

		c := filledCart()

		firstDone := make(chan error, 1)

		go func() {
			_, err := submitter.Submit(t.Context(), c)
			firstDone <- err
		}()

		<-entered

		// Act: double-click while the first submission is in flight
		_, err := submitter.Submit(t.Context(), c)

		// Assert
		require.Error(t, err)
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeSubmitInFlight, appErr.Code)

		close(release)
		require.NoError(t, <-firstDone)

		// settled: the lock is released again
		assert.Equal(t, sales.StateIdle, submitter.State())
	})
}

func TestUpdate(t *testing.T) {
	t.Run("Success - Full Replacement Via PUT", func(t *testing.T) {
		// Arrange
		var gotMethod, gotPath string

		var payload models.SaleRequest

		submitter := sales.NewSubmitter(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&payload)
			_ = json.NewEncoder(w).Encode(models.Sale{ID: 31, TotalPrice: 500})
		}))

		items := []models.SaleItemInput{{ProductID: 1, Quantity: 1}}

		// Act
		sale, err := submitter.Update(t.Context(), 31, items)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "/sales/31", gotPath)
		assert.Equal(t, items, payload.Products)
		assert.Equal(t, money.Cents(500), sale.TotalPrice)
	})

	t.Run("Failure - Empty Replacement Rejected Locally", func(t *testing.T) {
		// Arrange
		hits := 0
		submitter := sales.NewSubmitter(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			hits++
		}))

		// Act
		_, err := submitter.Update(t.Context(), 31, nil)

		// Assert
		require.Error(t, err)
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeEmptyCart, appErr.Code)
		assert.Zero(t, hits)
	})

	t.Run("Failure - Unknown Sale Maps To NotFound", func(t *testing.T) {
		// Arrange
		submitter := sales.NewSubmitter(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "Sale not found"}`))
		}))

		// Act
		_, err := submitter.Update(t.Context(), 404, []models.SaleItemInput{{ProductID: 1, Quantity: 1}})

		// Assert
		require.Error(t, err)
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestClient(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		// Arrange
		var gotPath string

		client := sales.NewClient(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.RequestURI()
			_ = json.NewEncoder(w).Encode([]models.Sale{{ID: 1, TotalPrice: 1250}, {ID: 2, TotalPrice: 300}})
		}))

		// Act
		list, err := client.List(t.Context(), 0, 100)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "/sales/?skip=0&limit=100", gotPath)
		require.Len(t, list, 2)
		assert.Equal(t, money.Cents(1250), list[0].TotalPrice)
	})

	t.Run("Get Missing Sale", func(t *testing.T) {
		// Arrange
		client := sales.NewClient(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		// Act
		_, err := client.Get(t.Context(), 404)

		// Assert
		require.Error(t, err)
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		// Arrange
		var gotMethod, gotPath string

		client := sales.NewClient(newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}))

		// Act & Assert
		require.NoError(t, client.Delete(t.Context(), 31))
		assert.Equal(t, http.MethodDelete, gotMethod)
		assert.Equal(t, "/sales/31", gotPath)
	})
}
