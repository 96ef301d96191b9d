// Package cart holds the shopping cart of a single owner: an insertion-ordered
// set of line items keyed by product id.
//
// A Cart is not safe for concurrent use. Callers serialize access per owner
// (see services.CartService) the same way UI event handlers run one at a time.
package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// LineTotal is UnitPrice × Quantity, unrounded.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Product is the subset of a catalog product the cart copies into a line item.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Image string
}

// Listener is called after every mutation that changed the cart, with a copy
// of the resulting line items.
type Listener func(items []LineItem)

type Cart struct {
	items     []LineItem
	index     map[string]int
	listeners []Listener
}

// New builds a cart from previously stored line items. Items without a
// product id or with a quantity below 1 are dropped; repeated product ids are
// folded into the first occurrence.
func New(items ...LineItem) *Cart {
	c := &Cart{index: make(map[string]int, len(items))}
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		if it.ProductID == "" || it.Quantity < 1 || it.UnitPrice.IsNegative() {
			continue
		}
		if i, ok := c.index[it.ProductID]; ok {
			c.items[i].Quantity += it.Quantity
			continue
		}
		c.index[it.ProductID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c
}

func (c *Cart) Subscribe(l Listener) {
	if l != nil {
		c.listeners = append(c.listeners, l)
	}
}

// AddItem increments the quantity of an existing line or appends a new one.
// A quantity below 1, a blank product id or a negative price is a no-op.
func (c *Cart) AddItem(p Product, quantity int) bool {
	id := strings.TrimSpace(p.ID)
	if id == "" || quantity < 1 || p.Price.IsNegative() {
		return false
	}
	if i, ok := c.index[id]; ok {
		c.items[i].Quantity += quantity
	} else {
		c.index[id] = len(c.items)
		c.items = append(c.items, LineItem{
			ProductID: id,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  quantity,
			Image:     p.Image,
		})
	}
	c.changed()
	return true
}

func (c *Cart) RemoveItem(productID string) bool {
	i, ok := c.index[productID]
	if !ok {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.reindex()
	c.changed()
	return true
}

// SetQuantity sets an absolute quantity. Zero or less removes the line.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		return c.RemoveItem(productID)
	}
	i, ok := c.index[productID]
	if !ok || c.items[i].Quantity == quantity {
		return false
	}
	c.items[i].Quantity = quantity
	c.changed()
	return true
}

func (c *Cart) Increment(productID string) bool {
	i, ok := c.index[productID]
	if !ok {
		return false
	}
	return c.SetQuantity(productID, c.items[i].Quantity+1)
}

// Decrement lowers the quantity by one; a line at quantity 1 is removed.
func (c *Cart) Decrement(productID string) bool {
	i, ok := c.index[productID]
	if !ok {
		return false
	}
	return c.SetQuantity(productID, c.items[i].Quantity-1)
}

func (c *Cart) Clear() bool {
	if len(c.items) == 0 {
		return false
	}
	c.items = nil
	c.index = make(map[string]int)
	c.changed()
	return true
}

func (c *Cart) Get(productID string) (LineItem, bool) {
	i, ok := c.index[productID]
	if !ok {
		return LineItem{}, false
	}
	return c.items[i], true
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c *Cart) TotalItemCount() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Subtotal is Σ unit price × quantity with no intermediate rounding.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func (c *Cart) reindex() {
	c.index = make(map[string]int, len(c.items))
	for i, it := range c.items {
		c.index[it.ProductID] = i
	}
}

func (c *Cart) changed() {
	if len(c.listeners) == 0 {
		return
	}
	snapshot := c.Items()
	for _, l := range c.listeners {
		l(snapshot)
	}
}
