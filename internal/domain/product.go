package domain

import "fmt"

// Product is an immutable catalog entry, identified by ID.
type Product struct {
	ID          int      `json:"id" validate:"gt=0"`
	Name        string   `json:"nome" validate:"required"`
	Description string   `json:"descricao"`
	Category    string   `json:"categoria"`
	Price       string   `json:"preco" validate:"required"`
	Images      []string `json:"imagens" validate:"dive,required"`
}

func (p Product) UnitPrice() (Money, error) {
	amount, err := ParsePrice(p.Price)
	if err != nil {
		return Money{}, fmt.Errorf("product[%d]: %w", p.ID, err)
	}

	return NewMoney(amount), nil
}

// FirstImage returns the cover image, or "" when the product has none.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) clone() Product {
	c := p
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	return c
}
