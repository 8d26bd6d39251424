package pricing

import (
	"math"
	"strconv"
	"strings"
)

// FormatCurrency renders a minor-unit amount with the currency symbol and
// zero fractional digits. INR uses Indian digit grouping.
func FormatCurrency(minor int64, currency Currency) string {
	units := int64(math.Round(float64(minor) / 100))
	switch currency {
	case INR:
		return "₹" + groupIndian(units)
	default:
		return "$" + groupWestern(units)
	}
}

func groupWestern(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

// groupIndian groups the last three digits, then pairs: 12,34,56,789.
func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		for i := len(head) - 2; i > 0; i -= 2 {
			head = head[:i] + "," + head[i:]
		}
		s = head + "," + tail
	}
	if neg {
		s = "-" + s
	}
	return s
}

// Default budget ranges when a free-text budget cannot be parsed.
var defaultBudget = map[Currency][2]int{
	USD: {50, 200},
	INR: {1000, 5000},
}

// ParseBudgetRange extracts a min/max pair from a free-text budget such as
// "$50-$200" or "100". A single number yields min=max. Unparseable input
// falls back to the currency-specific default range.
func ParseBudgetRange(s string, currency Currency) (int, int) {
	def := defaultBudget[USD]
	if d, ok := defaultBudget[currency]; ok {
		def = d
	}

	cleaned := strings.NewReplacer("$", "", "₹", "", ",", "", " ", "").Replace(s)
	if cleaned == "" {
		return def[0], def[1]
	}

	parts := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == '-' || r == '–'
	})

	var nums []int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return def[0], def[1]
		}
		nums = append(nums, n)
	}

	switch len(nums) {
	case 1:
		return nums[0], nums[0]
	case 2:
		return nums[0], nums[1]
	}
	return def[0], def[1]
}
