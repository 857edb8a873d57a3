package view

import (
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
)

type State int

const (
	Closed State = iota
	OpenEmpty
	OpenWithItems
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenEmpty:
		return "open-empty"
	case OpenWithItems:
		return "open-with-items"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{Closed, OpenEmpty, OpenWithItems} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("state[%s] is unknown", text)
}

// Snapshot is the cart state a render is computed from.
type Snapshot struct {
	Lines []domain.CartLine
	Total domain.Money
}

func SnapshotOf(cart *domain.Cart) Snapshot {
	return Snapshot{
		Lines: cart.Lines(),
		Total: cart.GrandTotal(),
	}
}

type LineView struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type Description struct {
	State         State      `json:"state"`
	Lines         []LineView `json:"lines"`
	Total         string     `json:"total,omitempty"`
	FooterVisible bool       `json:"footerVisible"`
	Message       string     `json:"message,omitempty"`
	Countdown     int        `json:"countdown,omitempty"`
}

func CountdownMessage(seconds int) string {
	return fmt.Sprintf("Seu carrinho está vazio. Fechando em %d segundos...", seconds)
}

// Render describes the open cart: the empty-cart countdown, or the lines with their subtotals and the grand total.
func Render(s Snapshot, countdown int) Description {
	if len(s.Lines) == 0 {
		return Description{
			State:     OpenEmpty,
			Lines:     []LineView{},
			Message:   CountdownMessage(countdown),
			Countdown: countdown,
		}
	}

	lines := make([]LineView, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, LineView{
			ProductID: l.ProductID,
			Name:      l.Product.Name,
			Image:     l.Product.FirstImage(),
			UnitPrice: l.Product.Price + " (unid.)",
			Quantity:  l.Quantity,
			Subtotal:  domain.FormatMoney(l.Subtotal()),
		})
	}

	return Description{
		State:         OpenWithItems,
		Lines:         lines,
		Total:         domain.FormatMoney(s.Total),
		FooterVisible: true,
	}
}

func (d Description) clone() Description {
	c := d
	c.Lines = append([]LineView{}, d.Lines...)
	return c
}
