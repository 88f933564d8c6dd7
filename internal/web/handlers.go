package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/counterdesk/counterdesk/internal/cart"
	"github.com/counterdesk/counterdesk/internal/dashboard"
	apperrors "github.com/counterdesk/counterdesk/internal/errors"
	"github.com/counterdesk/counterdesk/internal/models"
	"github.com/counterdesk/counterdesk/internal/money"
	"github.com/go-playground/validator/v10"
)

func (s *Server) LoginForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.store.Token(); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)

			return
		}

		s.render(w, r, "login.html", nil)
	}
}

func (s *Server) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectFlash(w, r, "/login", "Invalid form submission")

			return
		}

		username := r.PostFormValue("username")
		password := r.PostFormValue("password")

		if username == "" || password == "" {
			redirectFlash(w, r, "/login", "Username and password are required")

			return
		}

		if err := s.gw.Login(r.Context(), username, password); err != nil {
			appErr, ok := apperrors.IsAppError(err)
			if ok && appErr.Code == apperrors.ErrCodeUnauthenticated {
				redirectFlash(w, r, "/login", "Invalid credentials")

				return
			}

			s.fail(w, r, "/login", err)

			return
		}

		LoggerFromContext(r.Context()).Info("Operator logged in", "username", username)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.gw.Logout(); err != nil {
			LoggerFromContext(r.Context()).Error("Logout failed", "error", err.Error())
		}

		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

type dashboardData struct {
	Summary *dashboard.Summary
	Recent  []models.Sale
}

func (s *Server) Dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.summary.Summarize(r.Context())
		if err != nil {
			s.fail(w, r, "/login", err)

			return
		}

		recent, err := s.sales.List(r.Context(), 0, 10)
		if err != nil {
			s.fail(w, r, "/login", err)

			return
		}

		s.render(w, r, "dashboard.html", dashboardData{Summary: summary, Recent: recent})
	}
}

func (s *Server) Inventory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := s.catalog.List(r.Context(), 0, 100)
		if err != nil {
			s.fail(w, r, "/", err)

			return
		}

		s.render(w, r, "inventory.html", struct{ Products []models.Product }{products})
	}
}

// productForm mirrors the form fields as entered, so a failed submission
// re-renders with the operator's input intact. Price is major-unit text;
// it becomes cents exactly once, on parse.
type productForm struct {
	Name      string
	ShortName string
	Barcode   string
	Quantity  string
	Price     string
	Discount  string
	Threshold string
	Location  string
	Category  string
	Brand     string
}

type productFormData struct {
	Editing bool
	Action  string
	Form    productForm
}

func formFromRequest(r *http.Request) productForm {
	return productForm{
		Name:      strings.TrimSpace(r.PostFormValue("name")),
		ShortName: strings.TrimSpace(r.PostFormValue("shortname")),
		Barcode:   strings.TrimSpace(r.PostFormValue("barcode")),
		Quantity:  r.PostFormValue("quantity"),
		Price:     r.PostFormValue("price"),
		Discount:  r.PostFormValue("discount"),
		Threshold: r.PostFormValue("threshold"),
		Location:  strings.TrimSpace(r.PostFormValue("location")),
		Category:  strings.TrimSpace(r.PostFormValue("category")),
		Brand:     strings.TrimSpace(r.PostFormValue("brand")),
	}
}

func (f productForm) toRequest() (*models.CreateProductRequest, error) {

	price, err := money.FromMajor(f.Price)
	if err != nil {
		return nil, err
	}

	quantity, err := parseNonNegative("quantity", f.Quantity)
	if err != nil {
		return nil, err
	}

	threshold, err := parseNonNegative("threshold", f.Threshold)
	if err != nil {
		return nil, err
	}

	discount := int64(0)

	if f.Discount != "" {
		discount, err = parseNonNegative("discount", f.Discount)
		if err != nil {
			return nil, err
		}
	}

	return &models.CreateProductRequest{
		Name:      f.Name,
		ShortName: f.ShortName,
		Barcode:   f.Barcode,
		Quantity:  quantity,
		Price:     price,
		Discount:  int(discount),
		Threshold: threshold,
		Location:  f.Location,
		Category:  f.Category,
		Brand:     f.Brand,
	}, nil
}

func parseNonNegative(field, value string) (int64, error) {
	if value == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0, apperrors.AddValidationError(field, "must be a non-negative integer")
	}

	return n, nil
}

func formFromProduct(p *models.Product) productForm {
	return productForm{
		Name:      p.Name,
		ShortName: p.ShortName,
		Barcode:   p.Barcode,
		Quantity:  strconv.FormatInt(p.Quantity, 10),
		Price:     fmt.Sprintf("%.2f", p.Price.Major()),
		Discount:  strconv.Itoa(p.Discount),
		Threshold: strconv.FormatInt(p.Threshold, 10),
		Location:  p.Location,
		Category:  p.Category,
		Brand:     p.Brand,
	}
}

func (s *Server) ProductForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, "product_form.html", productFormData{Action: "/products"})
	}
}

func (s *Server) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectFlash(w, r, "/products/new", "Invalid form submission")

			return
		}

		req, err := formFromRequest(r).toRequest()
		if err != nil {
			s.fail(w, r, "/products/new", err)

			return
		}

		if err := s.validateRequest(req); err != nil {
			s.fail(w, r, "/products/new", err)

			return
		}

		product, err := s.catalog.Create(r.Context(), req)
		if err != nil {
			s.fail(w, r, "/products/new", err)

			return
		}

		LoggerFromContext(r.Context()).Info("Product created", "product_id", product.ID)
		redirectFlash(w, r, "/inventory", fmt.Sprintf("Product %q created", product.Name))
	}
}

func (s *Server) EditProductForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.fail(w, r, "/inventory", err)

			return
		}

		product, err := s.catalog.Get(r.Context(), id)
		if err != nil {
			s.fail(w, r, "/inventory", err)

			return
		}

		s.render(w, r, "product_form.html", productFormData{
			Editing: true,
			Action:  fmt.Sprintf("/products/%d", id),
			Form:    formFromProduct(product),
		})
	}
}

func (s *Server) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.fail(w, r, "/inventory", err)

			return
		}

		if err := r.ParseForm(); err != nil {
			redirectFlash(w, r, "/inventory", "Invalid form submission")

			return
		}

		req, err := formFromRequest(r).toRequest()
		if err != nil {
			s.fail(w, r, fmt.Sprintf("/products/%d/edit", id), err)

			return
		}

		if err := s.validateRequest(req); err != nil {
			s.fail(w, r, fmt.Sprintf("/products/%d/edit", id), err)

			return
		}

		update := &models.UpdateProductRequest{
			Name:      &req.Name,
			ShortName: &req.ShortName,
			Barcode:   &req.Barcode,
			Quantity:  &req.Quantity,
			Price:     &req.Price,
			Discount:  &req.Discount,
			Threshold: &req.Threshold,
			Location:  &req.Location,
			Category:  &req.Category,
			Brand:     &req.Brand,
		}

		product, err := s.catalog.Update(r.Context(), id, update)
		if err != nil {
			s.fail(w, r, fmt.Sprintf("/products/%d/edit", id), err)

			return
		}

		LoggerFromContext(r.Context()).Info("Product updated", "product_id", product.ID)
		redirectFlash(w, r, "/inventory", fmt.Sprintf("Product %q updated", product.Name))
	}
}

func (s *Server) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.fail(w, r, "/inventory", err)

			return
		}

		if err := s.catalog.Delete(r.Context(), id); err != nil {
			s.fail(w, r, "/inventory", err)

			return
		}

		LoggerFromContext(r.Context()).Info("Product deleted", "product_id", id)
		redirectFlash(w, r, "/inventory", "Product deleted")
	}
}

type saleEntryData struct {
	Query   string
	Results []models.Product
	Lines   []cart.Line
	Total   money.Cents
}

func (s *Server) NewSale() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")

		results, err := s.catalog.Search(r.Context(), query)
		if err != nil {
			s.fail(w, r, "/sale/new", err)

			return
		}

		s.render(w, r, "sale_new.html", saleEntryData{
			Query:   query,
			Results: results,
			Lines:   s.cart.Lines(),
			Total:   s.cart.Total(),
		})
	}
}

// SearchProducts backs the autocomplete. Responses for queries that are no
// longer the newest come back 204 so the consumer drops them instead of
// rendering stale results over fresh ones.
func (s *Server) SearchProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.search.Next()

		results, err := s.catalog.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			s.fail(w, r, "/sale/new", err)

			return
		}

		if !s.search.Latest(token) {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(results); err != nil {
			LoggerFromContext(r.Context()).Error("Failed to encode search results", "error", err.Error())
		}
	}
}

func (s *Server) AddToSale() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := formID(r, "product_id")
		if err != nil {
			s.fail(w, r, "/sale/new", err)

			return
		}

		product, err := s.catalog.Get(r.Context(), id)
		if err != nil {
			s.fail(w, r, "/sale/new", err)

			return
		}

		s.cart.AddProduct(product)
		http.Redirect(w, r, "/sale/new", http.StatusSeeOther)
	}
}

func (s *Server) SetQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := formID(r, "product_id")
		if err != nil {
			s.fail(w, r, "/sale/new", err)

			return
		}

		quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
		if err != nil {
			redirectFlash(w, r, "/sale/new", "Quantity must be a number")

			return
		}

		if !s.cart.SetQuantity(id, quantity) {
			redirectFlash(w, r, "/sale/new", "Quantity must be at least 1")

			return
		}

		http.Redirect(w, r, "/sale/new", http.StatusSeeOther)
	}
}

func (s *Server) RemoveFromSale() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := formID(r, "product_id")
		if err != nil {
			s.fail(w, r, "/sale/new", err)

			return
		}

		s.cart.RemoveProduct(id)
		http.Redirect(w, r, "/sale/new", http.StatusSeeOther)
	}
}

func (s *Server) SubmitSale() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sale, err := s.submitter.Submit(r.Context(), s.cart)
		if err != nil {
			s.fail(w, r, "/sale/new", err)

			return
		}

		LoggerFromContext(r.Context()).Info("Sale created",
			"sale_id", sale.ID, "total_price", int64(sale.TotalPrice))

		redirectFlash(w, r, fmt.Sprintf("/sales/%d", sale.ID),
			fmt.Sprintf("Sale created successfully! Total: %s", sale.TotalPrice.Format()))
	}
}

func (s *Server) SaleDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.fail(w, r, "/", err)

			return
		}

		sale, err := s.sales.Get(r.Context(), id)
		if err != nil {
			s.fail(w, r, "/", err)

			return
		}

		s.render(w, r, "sale_detail.html", struct{ Sale *models.Sale }{sale})
	}
}

// UpdateSale replaces the sale's lines wholesale. The form resends every
// surviving line; the server drops anything missing from the list.
func (s *Server) UpdateSale() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.fail(w, r, "/", err)

			return
		}

		if err := r.ParseForm(); err != nil {
			redirectFlash(w, r, fmt.Sprintf("/sales/%d", id), "Invalid form submission")

			return
		}

		productIDs := r.PostForm["product_id"]
		quantities := r.PostForm["quantity"]

		if len(productIDs) != len(quantities) {
			redirectFlash(w, r, fmt.Sprintf("/sales/%d", id), "Malformed sale form")

			return
		}

		items := make([]models.SaleItemInput, 0, len(productIDs))

		for i := range productIDs {
			productID, err := strconv.ParseInt(productIDs[i], 10, 64)
			if err != nil {
				redirectFlash(w, r, fmt.Sprintf("/sales/%d", id), "Malformed sale form")

				return
			}

			quantity, err := strconv.Atoi(quantities[i])
			if err != nil || quantity < 1 {
				redirectFlash(w, r, fmt.Sprintf("/sales/%d", id), "Quantities must be at least 1")

				return
			}

			items = append(items, models.SaleItemInput{ProductID: productID, Quantity: quantity})
		}

		sale, err := s.submitter.Update(r.Context(), id, items)
		if err != nil {
			s.fail(w, r, fmt.Sprintf("/sales/%d", id), err)

			return
		}

		LoggerFromContext(r.Context()).Info("Sale updated", "sale_id", sale.ID)
		redirectFlash(w, r, fmt.Sprintf("/sales/%d", sale.ID), "Sale updated")
	}
}

func (s *Server) DeleteSale() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.fail(w, r, "/", err)

			return
		}

		if err := s.sales.Delete(r.Context(), id); err != nil {
			s.fail(w, r, "/", err)

			return
		}

		LoggerFromContext(r.Context()).Info("Sale deleted", "sale_id", id)
		redirectFlash(w, r, "/", "Sale deleted")
	}
}

func (s *Server) validateRequest(req any) error {
	if err := s.validate.Struct(req); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			return apperrors.ValidationError(validationMessage(validationErrs))
		}

		return apperrors.InternalError("Unexpected validation error").WithError(err)
	}

	return nil
}

func validationMessage(errs validator.ValidationErrors) string {

	messages := make([]string, 0, len(errs))

	for _, err := range errs {
		var message string

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("Field %s is required", err.Field())
		case "min":
			message = fmt.Sprintf("Field %s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field %s must be at most %s characters", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("Field %s must be at least %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("Field %s must be at most %s", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field %s is invalid: %s=%s", err.Field(), err.Tag(), err.Param())
		}

		messages = append(messages, message)
	}

	return strings.Join(messages, "; ")
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperrors.BadRequestError("Invalid id in path").WithError(err)
	}

	return id, nil
}

func formID(r *http.Request, field string) (int64, error) {
	if err := r.ParseForm(); err != nil {
		return 0, apperrors.BadRequestError("Invalid form submission").WithError(err)
	}

	id, err := strconv.ParseInt(r.PostFormValue(field), 10, 64)
	if err != nil {
		return 0, apperrors.AddValidationError(field, "must be a product id")
	}

	return id, nil
}
