package cli

import (
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// weiPerToken is the wei scale shared by every supported chain's
// native token.
var weiPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// formatWei renders a wei amount as a native-token amount with six
// fractional digits.
func formatWei(wei *big.Int, symbol string) string {
	if wei == nil {
		return "0 " + symbol
	}
	amount := new(big.Rat).SetFrac(wei, weiPerToken)
	return amount.FloatString(6) + " " + symbol
}

// tagLine renders tag frequencies as "tag (n), ..." sorted by count
// descending, then name, capped at the five most frequent.
func tagLine(counts map[string]int) string {
	type tc struct {
		tag   string
		count int
	}
	sorted := make([]tc, 0, len(counts))
	for tag, count := range counts {
		sorted = append(sorted, tc{tag, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].tag < sorted[j].tag
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}

	parts := make([]string, len(sorted))
	for i, t := range sorted {
		parts[i] = t.tag + " (" + strconv.Itoa(t.count) + ")"
	}
	return strings.Join(parts, ", ")
}
