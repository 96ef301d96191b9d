package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"saif-gifts/cart"
	"saif-gifts/identity"
	"saif-gifts/models"
	"saif-gifts/pricing"
	"saif-gifts/repositories"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const cartLockStripes = 64

// ProductLookup resolves a product id to a product that can go into a cart.
type ProductLookup interface {
	GetActiveProduct(ctx context.Context, id string) (*models.Product, error)
}

type CartService struct {
	repo     repositories.CartRepository
	products ProductLookup
	taxRate  decimal.Decimal
	locks    [cartLockStripes]sync.Mutex
	log      *zap.Logger
}

func NewCartService(repo repositories.CartRepository, products ProductLookup, taxRate decimal.Decimal, log *zap.Logger) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		taxRate:  taxRate,
		log:      log,
	}
}

// CartSession is one owner's cart, loaded and locked for the duration of a
// request. Every change is written through before the next one is applied.
type CartSession struct {
	owner   identity.OwnerKey
	cart    *cart.Cart
	version int64
	saveErr error
	unlock  func()
}

func (cs *CartSession) Owner() identity.OwnerKey { return cs.owner }

func (cs *CartSession) Cart() *cart.Cart { return cs.cart }

// Close releases the owner lock and reports the first failed write, if any.
func (cs *CartSession) Close() error {
	if cs.unlock != nil {
		cs.unlock()
		cs.unlock = nil
	}
	return cs.saveErr
}

func (s *CartService) stripe(owner identity.OwnerKey) int {
	return int(xxhash.Sum64String(owner.String()) % cartLockStripes)
}

// Open locks owner's stripe and loads the cart.
func (s *CartService) Open(ctx context.Context, owner identity.OwnerKey) *CartSession {
	mu := &s.locks[s.stripe(owner)]
	mu.Lock()
	return s.load(ctx, owner, mu.Unlock)
}

func (s *CartService) load(ctx context.Context, owner identity.OwnerKey, unlock func()) *CartSession {
	stored := s.repo.Load(ctx, owner.String())
	cs := &CartSession{
		owner:   owner,
		cart:    cart.New(stored.Items...),
		version: stored.Version,
		unlock:  unlock,
	}
	cs.cart.Subscribe(func(items []cart.LineItem) {
		if cs.saveErr != nil {
			return
		}
		next := cs.version + 1
		if err := s.repo.Save(ctx, owner.String(), items, next); err != nil {
			s.log.Warn("cart write-through failed",
				zap.String("owner", owner.String()),
				zap.Int64("version", next),
				zap.Error(err))
			cs.saveErr = models.NewCollaboratorError("save cart", err)
			return
		}
		cs.version = next
	})
	return cs
}

func (s *CartService) View(ctx context.Context, owner identity.OwnerKey) (*models.CartView, error) {
	cs := s.Open(ctx, owner)
	defer cs.Close()
	return s.view(cs), nil
}

func (s *CartService) view(cs *CartSession) *models.CartView {
	items := cs.cart.Items()
	totals := pricing.ComputeTotals(items, s.taxRate).Rounded()

	lines := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, models.CartLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal().Round(2),
		})
	}
	return &models.CartView{
		Owner:          cs.owner.String(),
		IsGuest:        cs.owner.IsGuest(),
		Items:          lines,
		TotalItemCount: cs.cart.TotalItemCount(),
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
	}
}

// mutate runs fn against the locked cart and returns the resulting view.
func (s *CartService) mutate(ctx context.Context, owner identity.OwnerKey, fn func(c *cart.Cart) error) (*models.CartView, error) {
	cs := s.Open(ctx, owner)
	if err := fn(cs.cart); err != nil {
		cs.Close()
		return nil, err
	}
	view := s.view(cs)
	if err := cs.Close(); err != nil {
		return nil, err
	}
	return view, nil
}

// AddItem looks the product up in the catalog so price and name always come
// from the server side.
func (s *CartService) AddItem(ctx context.Context, owner identity.OwnerKey, productID string, quantity int) (*models.CartView, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, models.NewValidationError("product_id", "is required")
	}
	if quantity < 1 {
		return nil, models.NewValidationError("quantity", "must be at least 1")
	}

	product, err := s.products.GetActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.AddProduct(ctx, owner, product, quantity)
}

func (s *CartService) AddProduct(ctx context.Context, owner identity.OwnerKey, product *models.Product, quantity int) (*models.CartView, error) {
	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		if !c.AddItem(product.CartProduct(), quantity) {
			return models.NewValidationError("product", "cannot be added to the cart")
		}
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, owner identity.OwnerKey, productID string) (*models.CartView, error) {
	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

// SetQuantity with a quantity of 0 or less removes the line. Unknown product
// ids leave the cart as it is.
func (s *CartService) SetQuantity(ctx context.Context, owner identity.OwnerKey, productID string, quantity int) (*models.CartView, error) {
	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		c.SetQuantity(productID, quantity)
		return nil
	})
}

func (s *CartService) Increment(ctx context.Context, owner identity.OwnerKey, productID string) (*models.CartView, error) {
	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		c.Increment(productID)
		return nil
	})
}

// Decrement at quantity 1 removes the line.
func (s *CartService) Decrement(ctx context.Context, owner identity.OwnerKey, productID string) (*models.CartView, error) {
	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		c.Decrement(productID)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, owner identity.OwnerKey) (*models.CartView, error) {
	return s.mutate(ctx, owner, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// Merge moves a guest cart into a signed-in user's cart and empties the guest
// slot. Nothing calls it implicitly; the client asks for it after login.
func (s *CartService) Merge(ctx context.Context, guest, user identity.OwnerKey) (*models.CartView, error) {
	if !identity.IsValidGuestKey(guest.String()) {
		return nil, models.NewValidationError("guest_id", "is not a guest cart id")
	}
	if user.IsGuest() || user == "" {
		return nil, models.NewValidationError("owner", "merging requires a signed-in user")
	}

	unlock := s.lockPair(guest, user)
	defer unlock()

	from := s.repo.Load(ctx, guest.String())
	into := s.repo.Load(ctx, user.String())
	merged := &CartSession{owner: user, cart: cart.New(into.Items...), version: into.Version}
	if len(from.Items) == 0 {
		return s.view(merged), nil
	}

	// The merged cart is built off the write-through path and stored in one
	// write, so a failed save leaves both slots as they were.
	for _, it := range from.Items {
		merged.cart.AddItem(cart.Product{ID: it.ProductID, Name: it.Name, Price: it.UnitPrice, Image: it.Image}, it.Quantity)
	}
	if err := s.repo.Save(ctx, user.String(), merged.cart.Items(), into.Version+1); err != nil {
		s.log.Warn("merged cart not saved",
			zap.String("guest", guest.String()),
			zap.String("user", user.String()),
			zap.Error(err))
		return nil, models.NewCollaboratorError("save cart", err)
	}
	merged.version = into.Version + 1

	if err := s.repo.Save(ctx, guest.String(), []cart.LineItem{}, from.Version+1); err != nil {
		s.log.Warn("guest cart not cleared after merge", zap.String("guest", guest.String()), zap.Error(err))
	}
	s.log.Info("guest cart merged",
		zap.String("guest", guest.String()),
		zap.String("user", user.String()),
		zap.Int("lines", len(from.Items)))
	return s.view(merged), nil
}

// lockPair takes both owners' stripes in index order so two merges can never
// deadlock.
func (s *CartService) lockPair(a, b identity.OwnerKey) func() {
	i, j := s.stripe(a), s.stripe(b)
	if i == j {
		s.locks[i].Lock()
		return s.locks[i].Unlock
	}
	if i > j {
		i, j = j, i
	}
	s.locks[i].Lock()
	s.locks[j].Lock()
	return func() {
		s.locks[j].Unlock()
		s.locks[i].Unlock()
	}
}

// IsStaleWrite reports whether err came from a write that lost to a newer one.
func IsStaleWrite(err error) bool {
	return errors.Is(err, repositories.ErrStaleCartWrite)
}
