package invoice

import "strings"

// Keyword sets used to recognise extractor-generated column keys. Norwegian
// spellings sit next to the English ones because most source documents are
// Norwegian.
var (
	totalKeywords    = []string{"total", "beloep", "beløp", "sum", "amount", "pris"}
	quantityKeywords = []string{"antall", "quantity", "qty", "mengde", "number"}
	priceKeywords    = []string{"pris", "price", "enhetspris", "unit", "unitprice"}
	numericHints     = []string{"number", "line", "nr", "no"}
)

// ColumnClass is the semantic role of a column
type ColumnClass int

const (
	ClassGeneric ColumnClass = iota
	ClassTotal
	ClassQuantity
	ClassPrice
)

func (c ColumnClass) String() string {
	switch c {
	case ClassTotal:
		return "total"
	case ClassQuantity:
		return "quantity"
	case ClassPrice:
		return "price"
	default:
		return "generic"
	}
}

// Classification is the result of matching a column key against the keyword sets.
// A key may match several sets; Class picks one.
type Classification struct {
	IsTotal    bool
	IsQuantity bool
	IsPrice    bool
	IsNumeric  bool
}

// Class resolves overlapping matches: total first, then quantity, then price.
func (c Classification) Class() ColumnClass {
	switch {
	case c.IsTotal:
		return ClassTotal
	case c.IsQuantity:
		return ClassQuantity
	case c.IsPrice:
		return ClassPrice
	default:
		return ClassGeneric
	}
}

// Classify matches a column key case-insensitively against the keyword sets.
// Matching is by substring, so "lineTotalNOK" is a total column.
func Classify(columnKey string) Classification {
	c := Classification{
		IsTotal:    matchesKeywords(columnKey, totalKeywords),
		IsQuantity: matchesKeywords(columnKey, quantityKeywords),
		IsPrice:    matchesKeywords(columnKey, priceKeywords),
	}
	c.IsNumeric = c.IsTotal || c.IsQuantity || c.IsPrice || matchesKeywords(columnKey, numericHints)
	return c
}

// IsNumericColumn reports whether values of the column should be edited and
// formatted as numbers.
func IsNumericColumn(columnKey string) bool {
	return Classify(columnKey).IsNumeric
}

func matchesKeywords(key string, keywords []string) bool {
	lower := strings.ToLower(key)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
