package invoice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is rendered for missing values regardless of kind
const Placeholder = "-"

// DefaultLocale is used when no locale, or an invalid one, is configured
const DefaultLocale = "nb-NO"

// DefaultCurrency is assumed when a document has no currency code
const DefaultCurrency = "NOK"

// Languages that write the currency after the amount
var currencySuffixLanguages = map[string]bool{
	"nb": true, "nn": true, "no": true, "da": true, "sv": true, "fi": true,
	"de": true, "fr": true, "es": true, "it": true, "pl": true, "cs": true,
}

// Formatter renders document values for display. It holds no mutable state
// and is safe for concurrent use.
type Formatter struct {
	tag            language.Tag
	printer        *message.Printer
	currencySuffix bool
}

// NewFormatter creates a Formatter for a BCP 47 locale such as "nb-NO"
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	base, _ := tag.Base()
	return Formatter{
		tag:            tag,
		printer:        message.NewPrinter(tag),
		currencySuffix: currencySuffixLanguages[base.String()],
	}
}

// Locale returns the formatter's locale tag
func (f Formatter) Locale() string {
	return f.tag.String()
}

// Format renders value according to kind. Missing values (nil, null, empty
// text) render as Placeholder; text is returned unchanged.
func (f Formatter) Format(value any, kind ColumnType, currencyCode string) string {
	if isMissing(value) {
		return Placeholder
	}

	switch kind {
	case ColumnCurrency:
		return f.FormatCurrency(ParseNumeric(value), currencyCode)
	case ColumnPercentage:
		return f.FormatPercentage(ParseNumeric(value))
	case ColumnNumber:
		return f.FormatNumber(ParseNumeric(value))
	default:
		switch v := value.(type) {
		case Value:
			return v.String()
		case *Value:
			return v.String()
		case string:
			return v
		case *string:
			return *v
		case *float64:
			return formatFloat(*v)
		case float64:
			return formatFloat(v)
		default:
			return fmt.Sprint(v)
		}
	}
}

// FormatCurrency renders an amount with grouping and two fraction digits and
// the currency code placed per locale. Unknown codes fall back to
// "<code> <amount>" with a plain two-decimal amount.
func (f Formatter) FormatCurrency(amount float64, currencyCode string) string {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		code = DefaultCurrency
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " " + exactDecimal(amount).StringFixed(2)
	}

	formatted := f.messagePrinter().Sprintf("%v", number.Decimal(finite(amount), number.Scale(2)))
	if f.currencySuffix {
		return formatted + " " + unit.String()
	}
	return unit.String() + " " + formatted
}

// FormatOptionalCurrency is FormatCurrency for optional amounts; nil renders
// as Placeholder.
func (f Formatter) FormatOptionalCurrency(amount *float64, currencyCode string) string {
	if amount == nil {
		return Placeholder
	}
	return f.FormatCurrency(*amount, currencyCode)
}

// FormatPercentage renders one fraction digit followed by '%'
func (f Formatter) FormatPercentage(v float64) string {
	return exactDecimal(v).StringFixed(1) + "%"
}

// exactDecimal holds every binary digit of f, so 1.45 rounds as the
// 1.4499... it really is. Non-finite values become zero.
func exactDecimal(f float64) decimal.Decimal {
	d, err := decimal.NewFromString(strconv.FormatFloat(finite(f), 'f', 1074, 64))
	if err != nil {
		return decimal.NewFromFloat(finite(f))
	}
	return d
}

// FormatNumber renders a number with locale grouping and up to three
// fraction digits.
func (f Formatter) FormatNumber(v float64) string {
	return f.messagePrinter().Sprintf("%v", number.Decimal(finite(v), number.MaxFractionDigits(3)))
}

// FormatAmount renders a number with locale grouping and exactly two
// fraction digits, without a currency.
func (f Formatter) FormatAmount(v float64) string {
	return f.messagePrinter().Sprintf("%v", number.Decimal(finite(v), number.Scale(2)))
}

func (f Formatter) messagePrinter() *message.Printer {
	if f.printer == nil {
		return message.NewPrinter(language.MustParse(DefaultLocale))
	}
	return f.printer
}

func isMissing(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case *string:
		return v == nil || *v == ""
	case *float64:
		return v == nil
	case Value:
		return v.IsEmpty()
	case *Value:
		return v == nil || v.IsEmpty()
	default:
		return false
	}
}
