package api

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockroom/m/domain"
	"stockroom/m/internal/auth"
	"stockroom/m/internal/config"
	"stockroom/m/internal/dashboard"
	"stockroom/m/internal/database"
	"stockroom/m/internal/inventory"
	"stockroom/m/internal/logger"
	"stockroom/m/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": formatMoney,
}).ParseFS(templateFS, "templates/*.html"))

type ctxKey string

const ctxScope ctxKey = "scope"

// requestScope is the state owned by one unit of work.
type requestScope struct {
	store   *database.Accessor
	session *session.Session
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	sessions *session.Manager
	cfg      config.Config
	now      func() time.Time
}

// New constructs a Handler.
func New(db *sqlx.DB, cfg config.Config) *Handler {
	return &Handler{
		db:       db,
		sessions: session.NewManager(cfg.Secret, cfg.SessionTTL),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Router wires up the HTTP surface.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(h.unitOfWork)

		r.Get("/login", h.loginForm)
		r.Post("/login", h.login)
		r.Get("/logout", h.logout)

		r.With(h.requireLogin).Get("/", h.index)
		r.With(h.requireLogin).Get("/inventory", h.viewInventory)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   h.cfg.CORSAllowedOrigins,
				AllowedMethods:   []string{"GET", "OPTIONS"},
				AllowedHeaders:   []string{"Content-Type"},
				AllowCredentials: true,
			}))
			r.With(h.requireLogin).Get("/dashboard", h.dashboardJSON)
			r.With(h.requireLogin).Get("/inventory", h.inventoryJSON)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Unit of work

// unitOfWork gives each request its own store accessor and session. The
// accessor is released when the handler returns, including on panic.
func (h *Handler) unitOfWork(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := &requestScope{
			store:   database.NewAccessor(h.db),
			session: h.sessions.Load(r),
		}
		defer func() {
			if err := scope.store.Release(); err != nil {
				logger.Error("release connection", err)
			}
		}()
		ctx := context.WithValue(r.Context(), ctxScope, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func scopeFromContext(r *http.Request) *requestScope {
	if scope, ok := r.Context().Value(ctxScope).(*requestScope); ok {
		return scope
	}
	return nil
}

// requireLogin redirects anonymous callers to the login page instead of
// running next.
func (h *Handler) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := scopeFromContext(r)
		if scope == nil || !scope.session.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Auth handlers

type loginPage struct {
	Error    string
	Username string
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login.html", loginPage{})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if _, ok := r.PostForm["username"]; !ok {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}
	if _, ok := r.PostForm["password"]; !ok {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	scope := scopeFromContext(r)
	q, err := scope.store.Acquire(r.Context())
	if err != nil {
		h.serverError(w, r, "acquire connection", err)
		return
	}

	_, err = auth.Verify(r.Context(), q, scope.session, username, password)
	switch {
	case errors.Is(err, auth.ErrIncorrectUsername):
		h.render(w, r, http.StatusOK, "login.html", loginPage{Error: "Incorrect username."})
		return
	case errors.Is(err, auth.ErrIncorrectPassword):
		h.render(w, r, http.StatusOK, "login.html", loginPage{Error: "Incorrect password.", Username: username})
		return
	case err != nil:
		h.serverError(w, r, "verify credentials", err)
		return
	}

	if err := h.sessions.Save(w, scope.session); err != nil {
		h.serverError(w, r, "save session", err)
		return
	}
	logger.Info("user %q logged in (session %s, request %s)",
		scope.session.Username, scope.session.ID, middleware.GetReqID(r.Context()))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	scope := scopeFromContext(r)
	scope.session.Clear()
	if err := h.sessions.Save(w, scope.session); err != nil {
		h.serverError(w, r, "clear session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Dashboard and inventory

func (h *Handler) dashboardOptions() dashboard.Options {
	return dashboard.Options{
		Today:             h.now().UTC(),
		LowStockThreshold: h.cfg.LowStockThreshold,
		ExpiryHorizonDays: h.cfg.ExpiryHorizonDays,
		TopSellers:        h.cfg.TopSellersLimit,
	}
}

type dashboardPage struct {
	Username          string
	LowStockThreshold int
	ExpiryHorizonDays int
	*domain.Dashboard
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	scope := scopeFromContext(r)
	q, err := scope.store.Acquire(r.Context())
	if err != nil {
		h.serverError(w, r, "acquire connection", err)
		return
	}
	d, err := dashboard.Aggregate(r.Context(), q, h.dashboardOptions())
	if err != nil {
		h.serverError(w, r, "aggregate dashboard", err)
		return
	}
	h.render(w, r, http.StatusOK, "dashboard.html", dashboardPage{
		Username:          scope.session.Username,
		LowStockThreshold: h.cfg.LowStockThreshold,
		ExpiryHorizonDays: h.cfg.ExpiryHorizonDays,
		Dashboard:         d,
	})
}

type inventoryPage struct {
	Username string
	Products []domain.Product
}

func (h *Handler) viewInventory(w http.ResponseWriter, r *http.Request) {
	scope := scopeFromContext(r)
	q, err := scope.store.Acquire(r.Context())
	if err != nil {
		h.serverError(w, r, "acquire connection", err)
		return
	}
	products, err := inventory.ListAll(r.Context(), q)
	if err != nil {
		h.serverError(w, r, "list inventory", err)
		return
	}
	h.render(w, r, http.StatusOK, "inventory.html", inventoryPage{
		Username: scope.session.Username,
		Products: products,
	})
}

func (h *Handler) dashboardJSON(w http.ResponseWriter, r *http.Request) {
	q, err := scopeFromContext(r).store.Acquire(r.Context())
	if err != nil {
		h.respondServerError(w, r, "acquire connection", err)
		return
	}
	d, err := dashboard.Aggregate(r.Context(), q, h.dashboardOptions())
	if err != nil {
		h.respondServerError(w, r, "aggregate dashboard", err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handler) inventoryJSON(w http.ResponseWriter, r *http.Request) {
	q, err := scopeFromContext(r).store.Acquire(r.Context())
	if err != nil {
		h.respondServerError(w, r, "acquire connection", err)
		return
	}
	products, err := inventory.ListAll(r.Context(), q)
	if err != nil {
		h.respondServerError(w, r, "list inventory", err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// Helpers

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.serverError(w, r, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// serverError releases the request's connection, then reports a 500.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.abort(r, op, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) respondServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.abort(r, op, err)
	respondError(w, http.StatusInternalServerError, "unable to "+op)
}

func (h *Handler) abort(r *http.Request, op string, err error) {
	logger.Error(op, err)
	if scope := scopeFromContext(r); scope != nil {
		if relErr := scope.store.Release(); relErr != nil {
			logger.Error("release connection", relErr)
		}
	}
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
