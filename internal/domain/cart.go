package domain

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the user's cart as mirrored from the server. Items are keyed by
// ProductID (no duplicate rows); an item's quantity is always >= 1.
type Cart struct {
	Items []CartItem `json:"items"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// ItemCount is the total number of units across all line items.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Quantity returns the quantity for productID, 0 when absent.
func (c *Cart) Quantity(productID string) int {
	if c == nil {
		return 0
	}
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Clone returns a deep copy so optimistic mutation never aliases the
// slice a caller may still be reading.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return &Cart{Items: items}
}
