package domain

// Cart maps product id -> size -> quantity. Quantities are always > 0;
// a line that would drop to zero is removed instead.
type Cart map[string]map[Size]int

// CartLine is the row form of one cart entry.
type CartLine struct {
	ProductID string `db:"product_id"`
	Size      Size   `db:"size"`
	Quantity  int    `db:"quantity"`
}

func CartFromLines(lines []CartLine) Cart {
	c := Cart{}
	for _, l := range lines {
		c.Set(l.ProductID, l.Size, l.Quantity)
	}
	return c
}

// Set stores qty for a product/size, deleting the entry when qty <= 0.
func (c Cart) Set(productID string, size Size, qty int) {
	if qty <= 0 {
		if sizes, ok := c[productID]; ok {
			delete(sizes, size)
			if len(sizes) == 0 {
				delete(c, productID)
			}
		}
		return
	}
	if c[productID] == nil {
		c[productID] = map[Size]int{}
	}
	c[productID][size] = qty
}

func (c Cart) Count() int {
	n := 0
	for _, sizes := range c {
		for _, q := range sizes {
			n += q
		}
	}
	return n
}
