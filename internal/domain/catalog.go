package domain

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"sort"
	"strings"
	"unicode"
)

// AllCategories is the menu entry that disables category filtering.
const AllCategories = "Todos"

// Catalog is the read-only, ordered product list loaded at startup.
type Catalog struct {
	products []Product
	byID     map[int]int
}

func NewCatalog(products []Product) (*Catalog, error) {
	validate := validator.New()

	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}

	for i, p := range products {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("product at index %d: %w", i, err)
		}
		if _, err := p.UnitPrice(); err != nil {
			return nil, fmt.Errorf("p.UnitPrice: %w", err)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("product[%d] is duplicated", p.ID)
		}

		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p.clone())
	}

	return c, nil
}

// Find returns a copy of the product with the given id.
func (c *Catalog) Find(id int) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i].clone(), true
}

func (c *Catalog) All() []Product {
	return c.filter(func(Product) bool { return true })
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Search matches term against name and description, ignoring case and accents.
func (c *Catalog) Search(term string) []Product {
	needle := fold(term)
	if needle == "" {
		return c.All()
	}

	return c.filter(func(p Product) bool {
		return strings.Contains(fold(p.Name), needle) ||
			strings.Contains(fold(p.Description), needle)
	})
}

func (c *Catalog) FilterByCategory(category string) []Product {
	if category == "" || strings.EqualFold(category, AllCategories) {
		return c.All()
	}

	return c.filter(func(p Product) bool {
		return strings.EqualFold(p.Category, category)
	})
}

// Categories lists AllCategories first, then the unique categories in alphabetical order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var unique []string

	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		unique = append(unique, p.Category)
	}
	sort.Strings(unique)

	return append([]string{AllCategories}, unique...)
}

func (c *Catalog) filter(keep func(Product) bool) []Product {
	result := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if keep(p) {
			result = append(result, p.clone())
		}
	}
	return result
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	return strings.ToLower(strings.TrimSpace(folded))
}

// Browse combines Search and FilterByCategory, keeping catalog order.
func (c *Catalog) Browse(term, category string) []Product {
	inCategory := make(map[int]struct{})
	for _, p := range c.FilterByCategory(category) {
		inCategory[p.ID] = struct{}{}
	}

	var result []Product
	for _, p := range c.Search(term) {
		if _, ok := inCategory[p.ID]; ok {
			result = append(result, p)
		}
	}
	if result == nil {
		result = []Product{}
	}
	return result
}
