package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/repository"
	apperrors "github.com/Carlos85Carvalho/luni-final-sub000/pkg/errors"
)

// SessionView is a session snapshot returned to the caller: the cart plus its
// totals, recomputed on every read so a price override or discount change is
// always reflected.
type SessionView struct {
	Cart   *domain.Cart  `json:"cart"`
	Totals domain.Totals `json:"totals"`
}

// AddItemInput holds the parameters for adding an item to a session cart.
type AddItemInput struct {
	ItemID        string          `json:"item_id" validate:"required"`
	Kind          domain.LineKind `json:"kind" validate:"required,oneof=product service"`
	Quantity      int             `json:"quantity" validate:"omitempty,gt=0"`
	AppointmentID string          `json:"appointment_id,omitempty"`
	Note          string          `json:"note,omitempty"`
}

type session struct {
	mu         sync.Mutex
	cart       *domain.Cart
	lastActive time.Time
}

// SessionService is the in-memory registry of active point-of-sale sessions.
// Each session has one cart and one logical writer: mutations on a session
// are serialized by its mutex, while different sessions proceed concurrently.
// Sessions left idle past the TTL expire.
type SessionService struct {
	catalog   repository.CatalogRepository
	customers repository.CustomerRepository
	checkout  *CheckoutService
	pending   *PendingService
	loyalty   domain.LoyaltyConfig
	idleTTL   time.Duration
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewSessionService creates a session registry.
func NewSessionService(
	catalog repository.CatalogRepository,
	customers repository.CustomerRepository,
	checkout *CheckoutService,
	pending *PendingService,
	loyalty domain.LoyaltyConfig,
	idleTTL time.Duration,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		catalog:   catalog,
		customers: customers,
		checkout:  checkout,
		pending:   pending,
		loyalty:   loyalty,
		idleTTL:   idleTTL,
		logger:    logger,
		sessions:  make(map[string]*session),
	}
}

// Open starts a new session with an empty cart for the given salon.
func (s *SessionService) Open(ctx context.Context, salonID string) (*SessionView, error) {
	if salonID == "" {
		return nil, apperrors.InvalidInput("salon id is required")
	}

	cart := domain.NewCart(uuid.NewString(), salonID)
	sess := &session{cart: cart, lastActive: time.Now()}

	// Snapshot before the session is published to the registry.
	view := s.view(cart)

	s.mu.Lock()
	s.sessions[cart.ID] = sess
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session opened",
		slog.String("session_id", cart.ID),
		slog.String("salon_id", salonID),
	)

	return view, nil
}

// Get returns the session's cart and live totals.
func (s *SessionService) Get(_ context.Context, id string) (*SessionView, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return s.view(sess.cart), nil
}

// Close discards a session and its cart.
func (s *SessionService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return apperrors.NotFound("session", id)
	}

	s.logger.InfoContext(ctx, "session closed", slog.String("session_id", id))
	return nil
}

// AddItem resolves the item against the catalog and adds it to the cart.
// Product lines capture the current price and stock ceiling at add time;
// service lines capture the current price, overridable later.
func (s *SessionService) AddItem(ctx context.Context, id string, input AddItemInput) (*SessionView, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	switch input.Kind {
	case domain.KindProduct:
		qty := input.Quantity
		if qty == 0 {
			qty = 1
		}
		product, err := s.catalog.GetProduct(ctx, input.ItemID)
		if err != nil {
			return nil, err
		}
		if err := sess.cart.AddProductLine(*product, qty); err != nil {
			return nil, err
		}
	case domain.KindService:
		svc, err := s.catalog.GetService(ctx, input.ItemID)
		if err != nil {
			return nil, err
		}
		if err := sess.cart.AddServiceLine(*svc, input.AppointmentID, input.Note); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown line kind %q", input.Kind))
	}

	return s.view(sess.cart), nil
}

// AdjustQuantity changes a line's quantity by delta; a drop to zero or below
// removes the line.
func (s *SessionService) AdjustQuantity(_ context.Context, id, itemID string, kind domain.LineKind, delta int) (*SessionView, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.cart.AdjustQuantity(itemID, kind, delta); err != nil {
		return nil, err
	}
	return s.view(sess.cart), nil
}

// RemoveLine removes a line from the cart.
func (s *SessionService) RemoveLine(_ context.Context, id, itemID string, kind domain.LineKind) (*SessionView, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.cart.RemoveLine(itemID, kind); err != nil {
		return nil, err
	}
	return s.view(sess.cart), nil
}

// SetLinePrice overrides a service line's unit price.
func (s *SessionService) SetLinePrice(_ context.Context, id, itemID string, price int64) (*SessionView, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.cart.SetLinePrice(itemID, price); err != nil {
		return nil, err
	}
	return s.view(sess.cart), nil
}

// SetDiscount sets the cart-level discount.
func (s *SessionService) SetDiscount(_ context.Context, id string, kind domain.DiscountKind, value float64) (*SessionView, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.cart.SetDiscount(kind, value); err != nil {
		return nil, err
	}
	return s.view(sess.cart), nil
}

// AttachCustomer validates the customer exists and attaches them to the cart,
// replacing any previously attached customer.
func (s *SessionService) AttachCustomer(ctx context.Context, id, customerID string) (*SessionView, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	if err := sess.cart.AttachCustomer(customerID); err != nil {
		return nil, err
	}
	return s.view(sess.cart), nil
}

// ClearCart empties the session's cart but keeps the session open.
func (s *SessionService) ClearCart(_ context.Context, id string) (*SessionView, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	sess.cart.Clear()
	return s.view(sess.cart), nil
}

// Checkout finalizes the session's cart. On success the cart is cleared and
// the session closed. On a step failure the session stays open with the cart
// intact so the operator can inspect and decide.
func (s *SessionService) Checkout(ctx context.Context, id, paymentMethod string) (*CheckoutResult, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	result, err := s.checkout.Finalize(ctx, sess.cart, paymentMethod)
	if err != nil {
		return nil, err
	}

	sess.cart.Clear()
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	return result, nil
}

// SavePending parks the session's cart as a pending sale. On success the cart
// is cleared and the session closed.
func (s *SessionService) SavePending(ctx context.Context, id string) (*domain.PendingSale, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	pending, err := s.pending.Save(ctx, sess.cart)
	if err != nil {
		return nil, err
	}

	sess.cart.Clear()
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	return pending, nil
}

// Recover loads a pending sale into the session. The session's cart must be
// empty and the pending sale must belong to the session's salon; lines
// dropped because their item vanished from the catalog are returned alongside
// the refreshed view.
func (s *SessionService) Recover(ctx context.Context, id, pendingID string) (*SessionView, []domain.PendingLine, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return nil, nil, err
	}
	defer sess.mu.Unlock()

	if !sess.cart.IsEmpty() {
		return nil, nil, apperrors.Conflict("session cart must be empty before recovering a pending sale")
	}

	recovered, dropped, err := s.pending.Recover(ctx, pendingID, sess.cart.SalonID)
	if err != nil {
		return nil, nil, err
	}

	// Adopt the recovered cart under the existing session id.
	recovered.ID = sess.cart.ID
	sess.cart = recovered

	return s.view(sess.cart), dropped, nil
}

// Sweep drops sessions idle past the TTL. Returns the number removed.
func (s *SessionService) Sweep() int {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("expired idle sessions", slog.Int("count", removed))
	}
	return removed
}

// RunJanitor sweeps expired sessions at the given interval until ctx is done.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// acquire looks up a session, expires it if idle past the TTL, and returns it
// locked. The caller must unlock it.
func (s *SessionService) acquire(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, apperrors.NotFound("session", id)
	}

	sess.mu.Lock()
	if s.idleTTL > 0 && time.Since(sess.lastActive) > s.idleTTL {
		sess.mu.Unlock()
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, apperrors.Gone("session has expired")
	}
	sess.lastActive = time.Now()

	return sess, nil
}

// view snapshots the cart into a SessionView. The copy matters: the caller
// still holds the session lock here, but the view outlives it (the handler
// marshals it after the lock is released), so the live cart must not leak out.
func (s *SessionService) view(cart *domain.Cart) *SessionView {
	return &SessionView{
		Cart:   cart.Clone(),
		Totals: domain.CalculateTotals(cart, s.loyalty),
	}
}
