package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"saif-gifts/identity"
	"saif-gifts/models"
	"saif-gifts/pricing"
	"saif-gifts/repositories"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// OrderSink is the account order history a placed order is synced to.
type OrderSink interface {
	CreateOrder(ctx context.Context, userID string, snapshot *models.OrderSnapshot) error
}

type InvoiceRenderer interface {
	Render(order *models.OrderSnapshot) ([]byte, error)
}

type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, snapshot *models.OrderSnapshot, guest bool) error
}

type OrderMailer interface {
	SendOrderNotification(order *models.OrderSnapshot, invoice []byte) error
}

type CheckoutConfig struct {
	TaxRate     decimal.Decimal
	SyncTimeout time.Duration
	Now         func() time.Time
}

type CheckoutService struct {
	carts    *CartService
	current  repositories.CurrentOrderStore
	orders   OrderSink
	invoices InvoiceRenderer
	events   OrderEventPublisher
	mailer   OrderMailer

	taxRate     decimal.Decimal
	syncTimeout time.Duration
	ids         *orderIDGenerator
	breaker     *gobreaker.CircuitBreaker[struct{}]
	notifyWG    sync.WaitGroup
	log         *zap.Logger
}

// NewCheckoutService wires the checkout pipeline. events and mailer may be
// nil when those notifications are not configured.
func NewCheckoutService(
	cfg CheckoutConfig,
	carts *CartService,
	current repositories.CurrentOrderStore,
	orders OrderSink,
	invoices InvoiceRenderer,
	events OrderEventPublisher,
	mailer OrderMailer,
	log *zap.Logger,
) *CheckoutService {
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &CheckoutService{
		carts:       carts,
		current:     current,
		orders:      orders,
		invoices:    invoices,
		events:      events,
		mailer:      mailer,
		taxRate:     cfg.TaxRate,
		syncTimeout: cfg.SyncTimeout,
		ids:         &orderIDGenerator{now: cfg.Now},
		log:         log,
	}
	s.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "order-store",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repositories.ErrOrderIDConflict)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return s
}

// maxOrderIDAttempts bounds how often a sync reissues an order id that is
// already stored for another account.
const maxOrderIDAttempts = 3

// orderIDGenerator hands out ORD-<epoch millis> ids that never repeat within
// the process, even for two orders in the same millisecond.
type orderIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func (g *orderIDGenerator) next() (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now().UTC()
	ms := t.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD-%d", ms), t
}

func ValidateShippingDetails(d models.ShippingDetails) (models.ShippingDetails, error) {
	d = models.ShippingDetails{
		FullName:   strings.TrimSpace(d.FullName),
		Email:      strings.TrimSpace(d.Email),
		Phone:      strings.TrimSpace(d.Phone),
		Address:    strings.TrimSpace(d.Address),
		City:       strings.TrimSpace(d.City),
		PostalCode: strings.TrimSpace(d.PostalCode),
	}
	for _, f := range []struct{ name, value string }{
		{"full_name", d.FullName},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Address},
		{"city", d.City},
		{"postal_code", d.PostalCode},
	} {
		if f.value == "" {
			return d, models.NewValidationError(f.name, "is required")
		}
	}
	if addr, err := mail.ParseAddress(d.Email); err != nil || addr.Address != d.Email {
		return d, models.NewValidationError("email", "is not a valid email address")
	}
	return d, nil
}

// PlaceOrder turns owner's cart into an order.
//
// The snapshot is recorded in the current-order slot before the cart is
// cleared; if that fails nothing else happens. Signed-in owners then get the
// order saved to their account history. A failure there is reported on
// Placement.SyncErr and can be retried with RetrySync; it never undoes the
// placement. Notifications run in the background.
func (s *CheckoutService) PlaceOrder(ctx context.Context, owner identity.OwnerKey, details models.ShippingDetails) (*models.Placement, error) {
	details, err := ValidateShippingDetails(details)
	if err != nil {
		return nil, err
	}

	session := s.carts.Open(ctx, owner)
	defer session.Close()

	if session.Cart().IsEmpty() {
		return nil, models.NewValidationError("cart", "cart is empty")
	}

	items := session.Cart().Items()
	totals := pricing.ComputeTotals(items, s.taxRate).Rounded()
	orderID, placedAt := s.ids.next()
	snapshot := &models.OrderSnapshot{
		OrderID:         orderID,
		OrderDate:       placedAt,
		Owner:           owner.String(),
		ShippingDetails: details,
		LineItems:       items,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Total:           totals.Total,
	}

	if err := s.current.Put(ctx, owner.String(), snapshot); err != nil {
		s.log.Error("order not recorded", zap.String("owner", owner.String()), zap.Error(err))
		return nil, models.NewCollaboratorError("record order", err)
	}

	session.Cart().Clear()
	if err := session.Close(); err != nil {
		s.log.Warn("cart not cleared after checkout",
			zap.String("order_id", orderID),
			zap.String("owner", owner.String()),
			zap.Error(err))
	}

	placement := &models.Placement{Snapshot: snapshot}
	if !owner.IsGuest() {
		placement.SyncErr = s.syncOrder(ctx, owner, snapshot)
		placement.Synced = placement.SyncErr == nil
	}

	s.log.Info("order placed",
		zap.String("order_id", snapshot.OrderID),
		zap.String("owner", owner.String()),
		zap.Bool("guest", owner.IsGuest()),
		zap.Bool("synced", placement.Synced),
		zap.String("total", snapshot.Total.StringFixed(2)))

	s.notify(snapshot, owner.IsGuest())
	return placement, nil
}

// RetrySync saves the current order to the owner's account history again.
// Saving an order that is already stored is a no-op.
func (s *CheckoutService) RetrySync(ctx context.Context, owner identity.OwnerKey) (*models.Placement, error) {
	if owner.IsGuest() {
		return nil, models.NewValidationError("owner", "guest orders are not saved to an account")
	}
	snapshot, err := s.current.Get(ctx, owner.String())
	if err != nil {
		return nil, err
	}
	placement := &models.Placement{Snapshot: snapshot}
	placement.SyncErr = s.syncOrder(ctx, owner, snapshot)
	placement.Synced = placement.SyncErr == nil
	return placement, nil
}

func (s *CheckoutService) syncOrder(ctx context.Context, owner identity.OwnerKey, snapshot *models.OrderSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.syncTimeout)
	defer cancel()

	var err error
	for attempt := 1; ; attempt++ {
		_, err = s.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, s.orders.CreateOrder(ctx, owner.String(), snapshot)
		})
		if !errors.Is(err, repositories.ErrOrderIDConflict) || attempt == maxOrderIDAttempts {
			break
		}
		// Another instance stored an order under the same millisecond.
		if err = s.reissueOrderID(ctx, owner, snapshot); err != nil {
			break
		}
	}
	if err != nil {
		s.log.Warn("order sync failed",
			zap.String("order_id", snapshot.OrderID),
			zap.String("owner", owner.String()),
			zap.Error(err))
		return models.NewCollaboratorError("sync order", err)
	}
	return nil
}

// reissueOrderID gives snapshot a fresh id and re-records it as the owner's
// current order. snapshot is only changed once the new id is recorded.
func (s *CheckoutService) reissueOrderID(ctx context.Context, owner identity.OwnerKey, snapshot *models.OrderSnapshot) error {
	next := *snapshot
	next.OrderID, _ = s.ids.next()
	if err := s.current.Put(ctx, owner.String(), &next); err != nil {
		return fmt.Errorf("record reissued order id: %w", err)
	}
	s.log.Warn("order id already taken, reissued",
		zap.String("old_order_id", snapshot.OrderID),
		zap.String("order_id", next.OrderID),
		zap.String("owner", owner.String()))
	*snapshot = next
	return nil
}

func (s *CheckoutService) CurrentOrder(ctx context.Context, owner identity.OwnerKey) (*models.OrderSnapshot, error) {
	return s.current.Get(ctx, owner.String())
}

// Invoice renders the current order as a PDF.
func (s *CheckoutService) Invoice(ctx context.Context, owner identity.OwnerKey) (*models.OrderSnapshot, []byte, error) {
	snapshot, err := s.current.Get(ctx, owner.String())
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.invoices.Render(snapshot)
	if err != nil {
		return nil, nil, err
	}
	return snapshot, pdf, nil
}

func (s *CheckoutService) notify(snapshot *models.OrderSnapshot, guest bool) {
	if s.events == nil && s.mailer == nil {
		return
	}
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if s.events != nil {
			if err := s.events.PublishOrderPlaced(ctx, snapshot, guest); err != nil {
				s.log.Warn("order event not published", zap.String("order_id", snapshot.OrderID), zap.Error(err))
			}
		}
		if s.mailer != nil {
			invoice, err := s.invoices.Render(snapshot)
			if err != nil {
				s.log.Warn("invoice render failed", zap.String("order_id", snapshot.OrderID), zap.Error(err))
			}
			if err := s.mailer.SendOrderNotification(snapshot, invoice); err != nil {
				s.log.Warn("admin notification not sent", zap.String("order_id", snapshot.OrderID), zap.Error(err))
			}
		}
	}()
}

// Wait blocks until background notifications have finished.
func (s *CheckoutService) Wait() {
	s.notifyWG.Wait()
}
