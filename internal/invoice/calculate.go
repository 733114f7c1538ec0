package invoice

// LineTotal derives a line's total from its columns. A printed total that is
// positive wins over quantity × unit price, so rounding in the source document
// is kept. Returns 0 when neither is available.
func LineTotal(line OrderLine) float64 {
	if total := findColumnValue(line, totalKeywords); total > 0 {
		return total
	}

	quantity := findColumnValue(line, quantityKeywords)
	unitPrice := findColumnValue(line, priceKeywords)
	if quantity > 0 && unitPrice > 0 {
		return quantity * unitPrice
	}
	return 0
}

// findColumnValue returns the parsed value of the first column, in key order,
// whose key matches one of the keywords.
func findColumnValue(line OrderLine, keywords []string) float64 {
	if line.Columns == nil {
		return 0
	}
	for _, key := range line.ColumnKeys() {
		if matchesKeywords(key, keywords) {
			return ParseNumeric(line.Columns[key].Value)
		}
	}
	return 0
}

// Subtotal returns the document subtotal. A positive explicit subtotal is
// returned unchanged; otherwise the order lines are summed.
func Subtotal(doc Document) float64 {
	if doc.Subtotal > 0 {
		return doc.Subtotal
	}
	return subtotalFromLines(doc.OrderLines)
}

func subtotalFromLines(lines []OrderLine) float64 {
	var sum float64
	for _, line := range lines {
		if line.TotalAmount != nil {
			sum += ParseNumeric(line.TotalAmount)
			continue
		}
		if total := LineTotal(line); total > 0 {
			sum += total
			continue
		}
		if line.Quantity != nil && line.UnitPrice != nil {
			sum += *line.Quantity * *line.UnitPrice
		}
	}
	return finite(sum)
}

// Total returns the grand total: the explicit total when positive, otherwise
// Subtotal plus tax.
func Total(doc Document) float64 {
	if doc.TotalAmount > 0 {
		return doc.TotalAmount
	}
	return Subtotal(doc) + ParseNumeric(doc.TaxAmount)
}

// Reconcile returns a copy of doc whose Subtotal and TotalAmount hold the
// calculated figures. Exports read those fields as-is, so callers reconcile
// after acquisition and after each edit.
func Reconcile(doc Document) Document {
	out := doc
	out.Subtotal = Subtotal(doc)
	out.TotalAmount = Total(doc)
	return out
}
