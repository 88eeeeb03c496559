package domain

import (
	"strconv"
	"strings"
)

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatPrice 渲染展示价格，例如 "₹1,299 (35% off)"；仅当 mrp 大于售价时附加折扣
func FormatPrice(price float64, mrp *float64, currency string) string {
	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		if currency == "" {
			symbol = currencySymbols["INR"]
		} else {
			symbol = strings.ToUpper(currency) + " "
		}
	}

	s := symbol + groupThousands(int64(price))
	if mrp != nil && *mrp > price {
		discount := int((*mrp - price) / *mrp * 100)
		s += " (" + strconv.Itoa(discount) + "% off)"
	}
	return s
}

func groupThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
