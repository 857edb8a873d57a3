// Package storefront drives one shopping session: every user action goes through a Storefront, which keeps the cart,
// its persisted copy, the counter badge and the cart view consistent before returning.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/timer"
	"github.com/nikolayk812/storefront/internal/view"
	"go.uber.org/zap"
	"sync"
	"time"
)

const DefaultClearDelay = 5 * time.Second

type Deps struct {
	Catalog   *domain.Catalog
	Repo      port.CartRepository
	Composer  *checkout.Composer
	Opener    port.LinkOpener
	Scheduler timer.Scheduler
	Logger    *zap.Logger

	ClearDelay     time.Duration
	CountdownSteps int
	CountdownTick  time.Duration
}

// Handoff is the result of a successful checkout. ClearAt is read from the scheduler clock.
type Handoff struct {
	ID      uuid.UUID `json:"id"`
	Link    string    `json:"link"`
	Summary string    `json:"summary"`
	Total   string    `json:"total"`
	ClearAt time.Time `json:"clearAt"`
}

type Storefront struct {
	mu         sync.Mutex
	catalog    *domain.Catalog
	cart       *domain.Cart
	repo       port.CartRepository
	composer   *checkout.Composer
	opener     port.LinkOpener
	scheduler  timer.Scheduler
	view       *view.CartView
	logger     *zap.Logger
	clearDelay time.Duration

	badge        int
	pendingClear timer.Timer
	pendingID    uuid.UUID
}

// New rehydrates the persisted cart. A corrupt persisted cart is logged and replaced by an empty one.
func New(ctx context.Context, deps Deps) (*Storefront, error) {
	switch {
	case deps.Catalog == nil:
		return nil, fmt.Errorf("catalog is nil")
	case deps.Repo == nil:
		return nil, fmt.Errorf("repo is nil")
	case deps.Composer == nil:
		return nil, fmt.Errorf("composer is nil")
	}

	if deps.Scheduler == nil {
		deps.Scheduler = timer.System()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Opener == nil {
		deps.Opener = checkout.NewLogOpener(deps.Logger)
	}
	if deps.ClearDelay <= 0 {
		deps.ClearDelay = DefaultClearDelay
	}

	logger := deps.Logger.With(zap.String("component", "storefront"))

	cart, err := loadCart(ctx, deps.Repo)
	if errors.Is(err, domain.ErrCorruptCart) {
		logger.Warn("persisted cart is corrupt, starting with an empty cart", zap.Error(err))
		cart = domain.NewCart()
	} else if err != nil {
		return nil, fmt.Errorf("loadCart: %w", err)
	}

	s := &Storefront{
		catalog:    deps.Catalog,
		cart:       cart,
		repo:       deps.Repo,
		composer:   deps.Composer,
		opener:     deps.Opener,
		scheduler:  deps.Scheduler,
		logger:     logger,
		clearDelay: deps.ClearDelay,
		badge:      cart.TotalQuantity(),
	}

	s.view = view.NewCartView(deps.Scheduler,
		view.WithCountdown(deps.CountdownSteps, deps.CountdownTick),
		view.WithOnClose(func(reason view.CloseReason) {
			logger.Debug("cart view closed", zap.String("reason", string(reason)))
		}),
	)

	logger.Info("cart restored", zap.Int("lines", cart.Len()), zap.Int("items", s.badge))

	return s, nil
}

func loadCart(ctx context.Context, repo port.CartRepository) (*domain.Cart, error) {
	lines, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.Load: %w", err)
	}

	cart, err := domain.RestoreCart(lines)
	if err != nil {
		return nil, fmt.Errorf("domain.RestoreCart: %w", err)
	}

	return cart, nil
}

// AddToCart adds one unit of the product. It reports false, with no error, for an id missing from the catalog.
func (s *Storefront) AddToCart(ctx context.Context, productID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cart.AddOrIncrement(productID, s.catalog) {
		s.logger.Debug("add ignored: product not in catalog", zap.Int("productID", productID))
		return false, nil
	}

	return true, s.commitLocked(ctx)
}

func (s *Storefront) Increase(ctx context.Context, productID int) (bool, error) {
	return s.setQuantity(ctx, productID, domain.Increase)
}

// Decrease removes one unit; the line disappears when its last unit goes.
func (s *Storefront) Decrease(ctx context.Context, productID int) (bool, error) {
	return s.setQuantity(ctx, productID, domain.Decrease)
}

func (s *Storefront) setQuantity(ctx context.Context, productID int, delta domain.Delta) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.cart.SetQuantity(productID, delta)
	if err != nil {
		return false, fmt.Errorf("cart.SetQuantity: %w", err)
	}
	if !changed {
		return false, nil
	}

	return true, s.commitLocked(ctx)
}

func (s *Storefront) Remove(ctx context.Context, productID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cart.Remove(productID) {
		return false, nil
	}

	return true, s.commitLocked(ctx)
}

// Clear empties the cart. An open view re-renders into the empty-cart countdown.
func (s *Storefront) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearLocked(ctx)
}

func (s *Storefront) OpenCart() view.Description {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.Open(view.SnapshotOf(s.cart))
	return s.view.Description()
}

func (s *Storefront) CloseCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.Close()
}

func (s *Storefront) CartView() view.Description {
	return s.view.Description()
}

func (s *Storefront) ViewState() view.State {
	return s.view.State()
}

// Badge is the counter shown next to the cart icon: the total quantity in the cart.
func (s *Storefront) Badge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.badge
}

func (s *Storefront) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Lines()
}

func (s *Storefront) GrandTotal() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.GrandTotal()
}

func (s *Storefront) Products(query, category string) []domain.Product {
	return s.catalog.Browse(query, category)
}

func (s *Storefront) Product(id int) (domain.Product, error) {
	p, ok := s.catalog.Find(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("product[%d]: %w", id, domain.ErrProductNotFound)
	}
	return p, nil
}

func (s *Storefront) Categories() []string {
	return s.catalog.Categories()
}

// Checkout hands the order to the external channel, closes the view at once and clears the cart after the clear delay.
func (s *Storefront) Checkout(ctx context.Context) (Handoff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.IsEmpty() {
		return Handoff{}, domain.ErrEmptyCart
	}

	total := s.cart.GrandTotal()
	summary := s.composer.Summary(s.cart.Lines(), total)
	link := s.composer.Link(summary)

	if err := s.opener.Open(ctx, link); err != nil {
		return Handoff{}, fmt.Errorf("opener.Open: %w", err)
	}

	s.view.Close()

	if s.pendingClear != nil {
		s.pendingClear.Stop()
	}

	id := uuid.New()
	s.pendingID = id
	s.pendingClear = s.scheduler.AfterFunc(s.clearDelay, func() {
		s.clearAfterCheckout(id)
	})

	s.logger.Info("checkout handed off",
		zap.Stringer("handoffID", id),
		zap.String("total", total.String()),
		zap.Duration("clearDelay", s.clearDelay))

	return Handoff{
		ID:      id,
		Link:    link,
		Summary: summary,
		Total:   total.String(),
		ClearAt: s.scheduler.Now().Add(s.clearDelay),
	}, nil
}

func (s *Storefront) clearAfterCheckout(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingID != id {
		return
	}
	s.pendingID = uuid.Nil
	s.pendingClear = nil

	if err := s.clearLocked(context.Background()); err != nil {
		s.logger.Error("failed to clear cart after checkout", zap.Stringer("handoffID", id), zap.Error(err))
		return
	}
	s.logger.Info("cart cleared after checkout", zap.Stringer("handoffID", id))
}

// Close ends the session: it closes the view and performs a pending post-checkout clear immediately.
func (s *Storefront) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.Close()

	if s.pendingClear == nil {
		return nil
	}

	s.pendingClear.Stop()
	s.pendingClear = nil
	s.pendingID = uuid.Nil

	return s.clearLocked(ctx)
}

func (s *Storefront) clearLocked(ctx context.Context) error {
	s.cart.Clear()
	return s.commitLocked(ctx)
}

// commitLocked saves the cart, refreshes the badge and re-renders an open view, in that order.
// The badge and view follow the in-memory cart even when saving fails.
func (s *Storefront) commitLocked(ctx context.Context) error {
	saveErr := s.repo.Save(ctx, s.cart.Lines())

	s.badge = s.cart.TotalQuantity()
	s.view.Refresh(view.SnapshotOf(s.cart))

	if saveErr != nil {
		s.logger.Error("failed to persist cart", zap.Error(saveErr))
		return fmt.Errorf("repo.Save: %w", saveErr)
	}

	return nil
}
