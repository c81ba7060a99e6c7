package domain

import "strings"

// Size is a garment size label.
type Size string

const (
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

// Sizes lists the offered sizes in display order.
var Sizes = []Size{SizeS, SizeM, SizeL, SizeXL, SizeXXL}

func ParseSize(s string) (Size, bool) {
	sz := Size(strings.ToUpper(strings.TrimSpace(s)))
	return sz, sz.Valid()
}

func (s Size) Valid() bool {
	for _, k := range Sizes {
		if s == k {
			return true
		}
	}
	return false
}

func (s Size) String() string { return string(s) }
