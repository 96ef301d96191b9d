package repositories

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"saif-gifts/cart"

	"github.com/shopspring/decimal"
)

// Older clients stored either a bare array or items that carried the whole
// product document, with ids under id/$id/productId and prices under
// price/unitPrice, sometimes as strings. decodeStoredCart accepts all of them
// and returns canonical line items; unusable entries are dropped one by one.

type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

type looseInt int

func (i *looseInt) UnmarshalJSON(b []byte) error {
	var s looseString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return err
	}
	*i = looseInt(f)
	return nil
}

type legacyProduct struct {
	ID       looseString      `json:"id"`
	DollarID looseString      `json:"$id"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Image    string           `json:"image"`
	ImageURL string           `json:"image_url"`
}

type storedItem struct {
	ProductID      looseString      `json:"product_id"`
	ProductIDCamel looseString      `json:"productId"`
	ID             looseString      `json:"id"`
	DollarID       looseString      `json:"$id"`
	Name           string           `json:"name"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	UnitPriceCamel *decimal.Decimal `json:"unitPrice"`
	Price          *decimal.Decimal `json:"price"`
	Quantity       *looseInt        `json:"quantity"`
	Image          string           `json:"image"`
	Product        *legacyProduct   `json:"product"`
}

func (s storedItem) lineItem() (cart.LineItem, bool) {
	id := firstNonEmpty(s.ProductID, s.ProductIDCamel, s.ID, s.DollarID)
	name := s.Name
	image := s.Image
	price := firstDecimal(s.UnitPrice, s.UnitPriceCamel, s.Price)

	if p := s.Product; p != nil {
		if id == "" {
			id = firstNonEmpty(p.ID, p.DollarID)
		}
		if name == "" {
			name = p.Name
		}
		if image == "" {
			image = p.Image
		}
		if image == "" {
			image = p.ImageURL
		}
		if price == nil {
			price = p.Price
		}
	}

	qty := 1
	if s.Quantity != nil {
		qty = int(*s.Quantity)
	}
	if id == "" || price == nil || price.IsNegative() || qty < 1 {
		return cart.LineItem{}, false
	}
	return cart.LineItem{
		ProductID: id,
		Name:      name,
		UnitPrice: *price,
		Quantity:  qty,
		Image:     image,
	}, true
}

var errUnknownCartShape = errors.New("unrecognized cart payload")

func decodeStoredCart(raw []byte) (StoredCart, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return StoredCart{}, nil
	}

	var rawItems []json.RawMessage
	var version int64
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &rawItems); err != nil {
			return StoredCart{}, err
		}
	case '{':
		var envelope struct {
			Version int64             `json:"version"`
			Items   []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return StoredCart{}, err
		}
		rawItems, version = envelope.Items, envelope.Version
	default:
		return StoredCart{}, errUnknownCartShape
	}

	items := make([]cart.LineItem, 0, len(rawItems))
	for _, r := range rawItems {
		var si storedItem
		if err := json.Unmarshal(r, &si); err != nil {
			continue
		}
		if li, ok := si.lineItem(); ok {
			items = append(items, li)
		}
	}
	// cart.New folds duplicate ids left behind by old clients.
	return StoredCart{Items: cart.New(items...).Items(), Version: version}, nil
}

func firstNonEmpty(values ...looseString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

func firstDecimal(values ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
