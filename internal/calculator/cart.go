// Package calculator holds the pure cart and totals functions. Every
// function takes the current cart by value and returns a fresh slice;
// nothing in this package mutates its inputs or keeps state, so results
// are deterministic functions of the arguments alone.
package calculator

import "github.com/yutaka-m/invoicer/internal/models"

// AddToCart adds the product with productID to the cart.
//
// An unknown product ID is a no-op, not an error: during a pending or
// failed catalog load the catalog is empty and every add falls through
// here. If the product is already in the cart its quantity is
// incremented instead of creating a duplicate line, so the cart holds at
// most one line per product ID. New lines copy the product's description
// and price; later catalog changes never touch existing lines.
func AddToCart(cart []models.LineItem, catalog []models.Product, productID string) []models.LineItem {
	product, ok := findProduct(catalog, productID)
	if !ok {
		return cloneCart(cart)
	}

	next := cloneCart(cart)
	for i := range next {
		if next[i].ID == productID {
			next[i].Quantity++
			return next
		}
	}

	return append(next, models.LineItem{
		ID:          product.ID,
		Description: product.Description,
		Quantity:    1,
		UnitPrice:   product.Price,
	})
}

// UpdateQuantity sets the quantity of the matching line. Values below 1
// are normalized to 1; a non-positive quantity never persists. An
// unknown ID leaves the cart unchanged.
func UpdateQuantity(cart []models.LineItem, id string, quantity int) []models.LineItem {
	if quantity < 1 {
		quantity = 1
	}

	next := cloneCart(cart)
	for i := range next {
		if next[i].ID == id {
			next[i].Quantity = quantity
			break
		}
	}
	return next
}

// RemoveFromCart filters out the matching line. An unknown ID yields a
// cart equal by value to the input.
func RemoveFromCart(cart []models.LineItem, id string) []models.LineItem {
	next := make([]models.LineItem, 0, len(cart))
	for _, item := range cart {
		if item.ID != id {
			next = append(next, item)
		}
	}
	return next
}

func findProduct(catalog []models.Product, id string) (models.Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func cloneCart(cart []models.LineItem) []models.LineItem {
	next := make([]models.LineItem, len(cart))
	copy(next, cart)
	return next
}
