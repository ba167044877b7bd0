package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var eurPrinter = message.NewPrinter(language.French)

// FormatEUR renders a whole-euro amount with French digit grouping, e.g. "1 680 €".
func FormatEUR(amount int) string {
	return eurPrinter.Sprintf("%d €", amount)
}
