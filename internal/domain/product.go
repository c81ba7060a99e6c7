package domain

// SizeStock is one ledger entry: units on hand and units sold for a size.
type SizeStock struct {
	Size  Size `db:"size" json:"size"`
	Stock int  `db:"stock" json:"stock"`
	Sold  int  `db:"sold" json:"sold"`
}

type Product struct {
	ID          string      `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Description string      `db:"description" json:"description"`
	Price       float64     `db:"price" json:"price"`
	Category    string      `db:"category" json:"category"`
	SubCategory string      `db:"sub_category" json:"subCategory"`
	Bestseller  bool        `db:"bestseller" json:"bestseller"`
	ImagesJSON  string      `db:"images_json" json:"-"`
	Images      []string    `db:"-" json:"image"`
	SizeStock   []SizeStock `db:"-" json:"sizeStock"`
	CreatedAt   int64       `db:"created_at" json:"date"`
}

// Entry returns the ledger entry for size, if the product is offered in it.
func (p Product) Entry(size Size) (SizeStock, bool) {
	for _, e := range p.SizeStock {
		if e.Size == size {
			return e, true
		}
	}
	return SizeStock{}, false
}

// TotalStock sums stock across every size.
func (p Product) TotalStock() int {
	n := 0
	for _, e := range p.SizeStock {
		n += e.Stock
	}
	return n
}

// Availability is the storefront view of one size's stock.
type Availability struct {
	Size   Size   `json:"size"`
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Stock  int    `json:"stock"`
}

// CategoryFacet is one category/subCategory pair with its product count.
type CategoryFacet struct {
	Category    string `db:"category" json:"category"`
	SubCategory string `db:"sub_category" json:"subCategory"`
	Products    int    `db:"products" json:"products"`
}
