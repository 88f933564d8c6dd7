// Package web renders the operator-facing views. Handlers collect input,
// call the clients and format cents for display; they hold no business
// logic of their own.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/counterdesk/counterdesk/internal/cart"
	"github.com/counterdesk/counterdesk/internal/catalog"
	"github.com/counterdesk/counterdesk/internal/dashboard"
	apperrors "github.com/counterdesk/counterdesk/internal/errors"
	"github.com/counterdesk/counterdesk/internal/gateway"
	"github.com/counterdesk/counterdesk/internal/money"
	"github.com/counterdesk/counterdesk/internal/sales"
	"github.com/counterdesk/counterdesk/internal/session"
	"github.com/go-playground/validator/v10"
)

//go:embed templates/*.html static/*
var assets embed.FS

var templateFuncs = template.FuncMap{
	"cents": func(c money.Cents) string { return c.Format() },
	"date":  func(t time.Time) string { return t.Local().Format("Jan 2, 2006 3:04 PM") },
}

type Server struct {
	gw        *gateway.Gateway
	catalog   *catalog.Client
	sales     *sales.Client
	submitter *sales.Submitter
	summary   *dashboard.Service
	store     session.Store
	cart      *cart.Cart
	search    catalog.Sequencer
	validate  *validator.Validate

	pages map[string]*template.Template

	// operator is maintained by session events, never by polling storage.
	operator    atomic.Value
	unsubscribe func()
}

func NewServer(gw *gateway.Gateway, catalogClient *catalog.Client, salesClient *sales.Client, submitter *sales.Submitter, summary *dashboard.Service, store session.Store) *Server {

	s := &Server{
		gw:        gw,
		catalog:   catalogClient,
		sales:     salesClient,
		submitter: submitter,
		summary:   summary,
		store:     store,
		cart:      cart.New(),
		validate:  validator.New(),
		pages:     make(map[string]*template.Template),
	}

	for _, page := range []string{
		"login.html", "dashboard.html", "inventory.html",
		"product_form.html", "sale_new.html", "sale_detail.html",
	} {
		s.pages[page] = template.Must(
			template.New("layout").Funcs(templateFuncs).ParseFS(assets, "templates/layout.html", "templates/"+page),
		)
	}

	s.operator.Store("")

	if token, ok := store.Token(); ok {
		s.operator.Store(session.DisplayName(token))
	}

	s.unsubscribe = store.Subscribe(func(e session.Event) {
		switch e {
		case session.EventLogin:
			if token, ok := store.Token(); ok {
				s.operator.Store(session.DisplayName(token))
			}
		case session.EventLogout:
			s.operator.Store("")
		}
	})

	return s
}

func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Server) Routes() *http.ServeMux {

	mux := http.NewServeMux()

	staticFS, err := fs.Sub(assets, "static")
	if err != nil {
		panic(fmt.Sprintf("static assets missing from binary: %v", err))
	}

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	mux.HandleFunc("GET /login", s.LoginForm())
	mux.HandleFunc("POST /login", s.Login())
	mux.HandleFunc("POST /logout", s.Logout())

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return RequireSession(s.store, h)
	}

	mux.HandleFunc("GET /{$}", authed(s.Dashboard()))
	mux.HandleFunc("GET /inventory", authed(s.Inventory()))
	mux.HandleFunc("GET /products/new", authed(s.ProductForm()))
	mux.HandleFunc("POST /products", authed(s.CreateProduct()))
	mux.HandleFunc("GET /products/{id}/edit", authed(s.EditProductForm()))
	mux.HandleFunc("POST /products/{id}", authed(s.UpdateProduct()))
	mux.HandleFunc("POST /products/{id}/delete", authed(s.DeleteProduct()))
	mux.HandleFunc("GET /sale/new", authed(s.NewSale()))
	mux.HandleFunc("GET /sale/search", authed(s.SearchProducts()))
	mux.HandleFunc("POST /sale/add", authed(s.AddToSale()))
	mux.HandleFunc("POST /sale/quantity", authed(s.SetQuantity()))
	mux.HandleFunc("POST /sale/remove", authed(s.RemoveFromSale()))
	mux.HandleFunc("POST /sale/submit", authed(s.SubmitSale()))
	mux.HandleFunc("GET /sales/{id}", authed(s.SaleDetail()))
	mux.HandleFunc("POST /sales/{id}", authed(s.UpdateSale()))
	mux.HandleFunc("POST /sales/{id}/delete", authed(s.DeleteSale()))

	return mux
}

type viewData struct {
	Operator string
	LoggedIn bool
	Flash    string
	Data     any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data any) {

	_, loggedIn := s.store.Token()

	operator, _ := s.operator.Load().(string)

	view := viewData{
		Operator: operator,
		LoggedIn: loggedIn,
		Flash:    r.URL.Query().Get("flash"),
		Data:     data,
	}

	tmpl, ok := s.pages[page]
	if !ok {
		LoggerFromContext(r.Context()).Error("Unknown template requested", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := tmpl.ExecuteTemplate(w, "layout", view); err != nil {
		LoggerFromContext(r.Context()).Error("Template rendering failed", "page", page, "error", err.Error())
	}
}

// redirectFlash sends the operator to path with a one-shot message.
func redirectFlash(w http.ResponseWriter, r *http.Request, path, message string) {
	if message != "" {
		path += "?flash=" + url.QueryEscape(message)
	}

	http.Redirect(w, r, path, http.StatusSeeOther)
}

// fail routes an error to the right place: credential problems restart at
// the login form, everything else lands back on fallback with a message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, fallback string, err error) {

	logger := LoggerFromContext(r.Context())

	appErr, ok := apperrors.IsAppError(err)
	if !ok {
		logger.Error("Unexpected error", "error", err.Error())
		redirectFlash(w, r, fallback, "An unexpected error occurred")

		return
	}

	logger.Warn("Request failed", "code", appErr.Code, "error", appErr.Message, "detail", appErr.Detail)

	switch appErr.Code {
	case apperrors.ErrCodeUnauthenticated, apperrors.ErrCodeAuthExpired:
		redirectFlash(w, r, "/login", "Your session has expired. Please log in again.")
	default:
		message := appErr.Message
		if appErr.Detail != "" {
			message += ": " + appErr.Detail
		}

		redirectFlash(w, r, fallback, message)
	}
}
