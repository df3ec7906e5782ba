package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxItemQuantity caps a single cart line, merged adds included.
const MaxItemQuantity = 1000

// CartItem is a snapshot of product data taken when the item was added.
type CartItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	ImageURL  string  `json:"imageUrl" bson:"imageUrl"`
}

type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartView is the wire representation returned by every cart endpoint.
type CartView struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

func (c *Cart) Total() float64 {
	return LineTotal(c.Items)
}

func (c *Cart) View() CartView {
	items := c.Items
	if items == nil {
		items = []CartItem{}
	}
	return CartView{Items: items, Total: c.Total()}
}

// IndexOf returns the position of productID in the cart, or -1.
func (c *Cart) IndexOf(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// LineTotal sums price*quantity in decimal so repeated cents do not drift.
func LineTotal(items []CartItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum = sum.Add(line)
	}
	f, _ := sum.Round(2).Float64()
	return f
}
