package i18n

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

// letterFolds unifies Arabic letter variants customers type interchangeably.
// Hamza-carrying alef/waw/yaa forms are already reduced by decomposition.
var letterFolds = strings.NewReplacer(
	"ى", "ي", // alef maksura -> yaa
	"ة", "ه", // taa marbuta -> haa
	"ٱ", "ا", // alef wasla -> alef
)

// Normalize prepares text for matching: it trims and case-folds, strips
// diacritics (harakat, hamza marks) and tatweel, unifies letter variants and
// collapses whitespace.
func Normalize(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == tatweel })),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	out = letterFolds.Replace(out)
	return strings.Join(strings.Fields(out), " ")
}

// currencyLabels maps ISO codes to the short Arabic label shown after prices.
var currencyLabels = map[string]string{
	"SAR": "ر.س",
	"AED": "د.إ",
	"KWD": "د.ك",
	"EGP": "ج.م",
}

// Price formats an amount for display, e.g. "١٢٠٫٥٠ ر.س".
func Price(amount float64, currency string) string {
	label, ok := currencyLabels[strings.ToUpper(currency)]
	if !ok {
		label = currencyLabels["SAR"]
	}
	return printer.Sprintf("%.2f", amount) + " " + label
}

// Number formats an integer with Arabic-Indic digits.
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// Date formats a date as "٥ مارس ٢٠٢٦".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return Digits(strconv.Itoa(t.Day())) + " " + arabicMonths[t.Month()-1] + " " + Digits(strconv.Itoa(t.Year()))
}

// Digits replaces ASCII digits with Arabic-Indic digits, leaving everything
// else untouched. Unlike Number it never inserts grouping separators.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return '٠' + (r - '0')
		}
		return r
	}, s)
}
