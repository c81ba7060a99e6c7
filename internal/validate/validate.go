package validate

import (
	"math"
	"regexp"
	"strings"

	"storefront/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reLabel = regexp.MustCompile(`^[A-Za-z0-9 &'_-]{1,40}$`)
)

const MaxImages = 4

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password enforces a length window; bcrypt ignores bytes past 72.
func Password(s string) bool {
	return len(s) >= 8 && len(s) <= 72
}

// ID validates a resource identifier (product/order/user ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 120 {
		return "", false
	}
	return s, true
}

// Label validates category / subCategory values.
func Label(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reLabel.MatchString(s)
}

func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= max
}

func Price(f float64) bool {
	return f >= 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func Quantity(n int) bool { return n >= 1 }

// Size accepts only the offered size labels (case-insensitive).
func Size(s string) (domain.Size, bool) {
	return domain.ParseSize(s)
}

// SizeStock checks an admin-supplied ledger: known sizes, no duplicates,
// no negative counters.
func SizeStock(entries []domain.SizeStock) ([]domain.SizeStock, bool) {
	seen := map[domain.Size]bool{}
	out := make([]domain.SizeStock, 0, len(entries))
	for _, e := range entries {
		sz, ok := domain.ParseSize(string(e.Size))
		if !ok || seen[sz] || e.Stock < 0 || e.Sold < 0 {
			return nil, false
		}
		seen[sz] = true
		out = append(out, domain.SizeStock{Size: sz, Stock: e.Stock, Sold: e.Sold})
	}
	return out, true
}

// Status parses an order status label.
func Status(s string) (domain.OrderStatus, bool) {
	st, err := domain.ParseOrderStatus(strings.TrimSpace(s))
	return st, err == nil
}
