// Package rest exposes the storefront session over HTTP.
package rest

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/storefront"
	"github.com/nikolayk812/storefront/internal/view"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

const emptyCartNotice = "Seu carrinho está vazio. Adicione itens antes de finalizar o pedido."

type Storefront interface {
	AddToCart(ctx context.Context, productID int) (bool, error)
	Increase(ctx context.Context, productID int) (bool, error)
	Decrease(ctx context.Context, productID int) (bool, error)
	Remove(ctx context.Context, productID int) (bool, error)
	Clear(ctx context.Context) error
	OpenCart() view.Description
	CloseCart()
	CartView() view.Description
	Badge() int
	Checkout(ctx context.Context) (storefront.Handoff, error)
	Products(query, category string) []domain.Product
	Product(id int) (domain.Product, error)
	Categories() []string
}

type Handler struct {
	sf     Storefront
	logger *zap.Logger
}

func NewHandler(sf Storefront, logger *zap.Logger) *Handler {
	return &Handler{
		sf:     sf,
		logger: logger.With(zap.String("component", "rest")),
	}
}

type cartResponse struct {
	Changed bool             `json:"changed"`
	Badge   int              `json:"badge"`
	View    view.Description `json:"view"`
}

// Routes builds the router with request id, panic recovery and access logging.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.Products)
		r.Get("/products/{id}", h.Product)
		r.Get("/categories", h.Categories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart)
			r.Delete("/", h.ClearCart)
			r.Post("/open", h.OpenCart)
			r.Post("/close", h.CloseCart)

			r.Route("/items/{id}", func(r chi.Router) {
				r.Post("/", h.mutate(h.sf.AddToCart))
				r.Delete("/", h.mutate(h.sf.Remove))
				r.Post("/increase", h.mutate(h.sf.Increase))
				r.Post("/decrease", h.mutate(h.sf.Decrease))
			})
		})

		r.Post("/checkout", h.Checkout)
	})

	r.Get("/healthz", h.HealthCheck)
}

func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	products := h.sf.Products(query.Get("q"), query.Get("category"))
	respondJSON(w, h.logger, http.StatusOK, products)
}

func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	id, ok := parseID(w, r, mLogger)
	if !ok {
		return
	}

	product, err := h.sf.Product(id)
	if errors.Is(err, domain.ErrProductNotFound) {
		respondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		return
	}
	if err != nil {
		mLogger.Error("failed to get product", zap.Int("productID", id), zap.Error(err))
		respondError(w, mLogger, http.StatusInternalServerError, "Failed to get product")
		return
	}

	respondJSON(w, mLogger, http.StatusOK, product)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.sf.Categories())
}

func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, cartResponse{Badge: h.sf.Badge(), View: h.sf.CartView()})
}

func (h *Handler) OpenCart(w http.ResponseWriter, r *http.Request) {
	desc := h.sf.OpenCart()
	respondJSON(w, h.logger, http.StatusOK, cartResponse{Badge: h.sf.Badge(), View: desc})
}

func (h *Handler) CloseCart(w http.ResponseWriter, r *http.Request) {
	h.sf.CloseCart()
	respondJSON(w, h.logger, http.StatusOK, cartResponse{Badge: h.sf.Badge(), View: h.sf.CartView()})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	if err := h.sf.Clear(r.Context()); err != nil {
		mLogger.Error("cart clear failed", zap.Error(err))
		respondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
		return
	}

	respondJSON(w, mLogger, http.StatusOK, cartResponse{
		Changed: true,
		Badge:   h.sf.Badge(),
		View:    h.sf.CartView(),
	})
}

// mutate adapts a cart operation keyed by product id into a handler.
func (h *Handler) mutate(op func(ctx context.Context, productID int) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mLogger := h.loggerWithReqID(r)

		id, ok := parseID(w, r, mLogger)
		if !ok {
			return
		}

		changed, err := op(r.Context(), id)
		if err != nil {
			mLogger.Error("cart mutation failed", zap.Int("productID", id), zap.Error(err))
			respondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
			return
		}

		respondJSON(w, mLogger, http.StatusOK, cartResponse{
			Changed: changed,
			Badge:   h.sf.Badge(),
			View:    h.sf.CartView(),
		})
	}
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	handoff, err := h.sf.Checkout(r.Context())
	if errors.Is(err, domain.ErrEmptyCart) {
		mLogger.Info("checkout rejected: cart is empty")
		respondError(w, mLogger, http.StatusConflict, emptyCartNotice)
		return
	}
	if err != nil {
		mLogger.Error("checkout failed", zap.Error(err))
		respondError(w, mLogger, http.StatusInternalServerError, "Failed to checkout")
		return
	}

	respondJSON(w, mLogger, http.StatusOK, handoff)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) loggerWithReqID(r *http.Request) *zap.Logger {
	return h.logger.With(zap.String("requestID", middleware.GetReqID(r.Context())))
}

func parseID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		respondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", raw))
		return 0, false
	}
	return id, true
}
