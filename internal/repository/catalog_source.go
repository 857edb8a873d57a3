package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"io"
	"net/http"
	"os"
	"strings"
)

type catalogSource struct {
	location string
	client   *http.Client
}

// NewCatalogSource reads the product list from a local file, or from an http(s) URL when location has that scheme.
func NewCatalogSource(location string, client *http.Client) (port.CatalogSource, error) {
	if location == "" {
		return nil, fmt.Errorf("location is empty")
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &catalogSource{
		location: location,
		client:   client,
	}, nil
}

func (s *catalogSource) Load(ctx context.Context) ([]domain.Product, error) {
	var (
		body []byte
		err  error
	)

	if isRemote(s.location) {
		body, err = s.fetch(ctx)
	} else {
		body, err = os.ReadFile(s.location)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog[%s]: %w", s.location, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return products, nil
}

func (s *catalogSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	return body, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
