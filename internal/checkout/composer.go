// Package checkout turns cart contents into the outbound order message and link handed to an external messaging service.
package checkout

import (
	"context"
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://api.whatsapp.com/send"

const separator = "--------------------------------------"

type Composer struct {
	phone   string
	baseURL string
}

func NewComposer(phone, baseURL string) (*Composer, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("url.ParseRequestURI: %w", err)
	}

	return &Composer{
		phone:   phone,
		baseURL: baseURL,
	}, nil
}

// Summary renders the human-readable order: one block per line, then the grand total.
func (c *Composer) Summary(lines []domain.CartLine, total domain.Money) string {
	var b strings.Builder
	b.WriteString("Olá! Gostaria de fazer o seguinte pedido:\n\n")

	for _, l := range lines {
		fmt.Fprintf(&b, "*Produto:* %s\n", l.Product.Name)
		fmt.Fprintf(&b, "*Quantidade:* %d\n", l.Quantity)
		fmt.Fprintf(&b, "*Subtotal:* %s\n", domain.FormatMoney(l.Subtotal()))
		b.WriteString(separator + "\n")
	}

	fmt.Fprintf(&b, "\n*TOTAL GERAL:* %s", domain.FormatMoney(total))

	return b.String()
}

// Link builds the messaging URL carrying the recipient and the percent-encoded summary.
func (c *Composer) Link(summary string) string {
	return fmt.Sprintf("%s?phone=%s&text=%s", c.baseURL, url.QueryEscape(c.phone), encodeComponent(summary))
}

// componentUnescaper undoes the query escapes that a URI component keeps literal.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes s like a URI component: spaces become %20, and !'()* stay literal.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

type logOpener struct {
	logger *zap.Logger
}

// NewLogOpener returns a LinkOpener that only records the link; the HTTP client is expected to open it.
func NewLogOpener(logger *zap.Logger) port.LinkOpener {
	return &logOpener{logger: logger.With(zap.String("component", "opener"))}
}

func (o *logOpener) Open(_ context.Context, link string) error {
	o.logger.Info("checkout link ready", zap.String("link", link))
	return nil
}
