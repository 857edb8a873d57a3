package domain

import (
	"fmt"
	"github.com/shopspring/decimal"
	"slices"
)

// Delta is the step applied by SetQuantity.
type Delta int

const (
	Increase Delta = 1
	Decrease Delta = -1
)

type ProductFinder interface {
	Find(id int) (Product, bool)
}

type CartLine struct {
	ProductID int
	Product   Product
	Quantity  int
	UnitPrice Money
}

func (l CartLine) Subtotal() Money {
	return l.UnitPrice.Mul(l.Quantity)
}

// Cart keeps at most one line per product, in insertion order.
// A line never holds a quantity below 1.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// RestoreCart rebuilds a cart from persisted lines, rejecting lines that break the cart invariants.
func RestoreCart(lines []CartLine) (*Cart, error) {
	c := &Cart{lines: make([]CartLine, 0, len(lines))}
	seen := make(map[int]struct{}, len(lines))

	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("product[%d] has quantity %d: %w", l.ProductID, l.Quantity, ErrCorruptCart)
		}
		if _, ok := seen[l.ProductID]; ok {
			return nil, fmt.Errorf("product[%d] is duplicated: %w", l.ProductID, ErrCorruptCart)
		}
		seen[l.ProductID] = struct{}{}

		price, err := l.Product.UnitPrice()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptCart, err)
		}

		c.lines = append(c.lines, CartLine{
			ProductID: l.ProductID,
			Product:   l.Product.clone(),
			Quantity:  l.Quantity,
			UnitPrice: price,
		})
	}

	return c, nil
}

// AddOrIncrement bumps the line for id, or appends a snapshot of the product found by finder.
// It reports whether the cart changed; an unknown id leaves the cart untouched.
func (c *Cart) AddOrIncrement(id int, finder ProductFinder) bool {
	if i := c.index(id); i >= 0 {
		c.lines[i].Quantity++
		return true
	}

	product, ok := finder.Find(id)
	if !ok {
		return false
	}

	price, err := product.UnitPrice()
	if err != nil {
		return false
	}

	c.lines = append(c.lines, CartLine{
		ProductID: id,
		Product:   product.clone(),
		Quantity:  1,
		UnitPrice: price,
	})

	return true
}

// SetQuantity applies delta to the line for id. A line that drops to zero is removed.
func (c *Cart) SetQuantity(id int, delta Delta) (bool, error) {
	if delta != Increase && delta != Decrease {
		return false, fmt.Errorf("delta[%d]: %w", delta, ErrInvalidDelta)
	}

	i := c.index(id)
	if i < 0 {
		return false, nil
	}

	quantity := c.lines[i].Quantity + int(delta)
	if quantity <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
		return true, nil
	}

	c.lines[i].Quantity = quantity
	return true, nil
}

func (c *Cart) Remove(id int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}

	c.lines = slices.Delete(c.lines, i, i+1)
	return true
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) TotalQuantity() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

func (c *Cart) GrandTotal() Money {
	total := NewMoney(decimal.Zero)
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, len(c.lines))
	for i, l := range c.lines {
		l.Product = l.Product.clone()
		lines[i] = l
	}
	return lines
}

func (c *Cart) Line(id int) (CartLine, bool) {
	i := c.index(id)
	if i < 0 {
		return CartLine{}, false
	}
	l := c.lines[i]
	l.Product = l.Product.clone()
	return l, true
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(id int) int {
	return slices.IndexFunc(c.lines, func(l CartLine) bool {
		return l.ProductID == id
	})
}
