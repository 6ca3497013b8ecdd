package presentation

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var supported = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Dutch,
	language.Polish,
	language.Portuguese,
	language.Swedish,
	language.Danish,
	language.Norwegian,
	language.Finnish,
}

var matcher = language.NewMatcher(supported)

// timestampLayouts approximates Date.toLocaleString per base language.
var timestampLayouts = map[string]string{
	"en": "1/2/2006, 3:04:05 PM",
	"de": "2.1.2006, 15:04:05",
	"fr": "02/01/2006 15:04:05",
	"es": "2/1/2006, 15:04:05",
	"it": "2/1/2006, 15:04:05",
	"nl": "2-1-2006, 15:04:05",
	"pl": "2.01.2006, 15:04:05",
	"pt": "02/01/2006, 15:04:05",
	"sv": "2006-01-02 15:04:05",
	"da": "2.1.2006 15.04.05",
	"no": "2.1.2006, 15:04:05",
	"fi": "2.1.2006 klo 15.04.05",
}

// DetectLocale picks the best supported language for an Accept-Language header.
// Only the base language matters, like the two letter prefix of navigator.language.
func DetectLocale(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return language.English
	}
	return supported[index]
}

// Formatter renders values for one locale and time zone.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	layout  string
	loc     *time.Location
}

// NewFormatter builds a formatter. A nil location means UTC.
func NewFormatter(tag language.Tag, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	base, _ := tag.Base()
	layout, ok := timestampLayouts[base.String()]
	if !ok {
		layout = "2006-01-02 15:04:05"
	}
	return &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
		layout:  layout,
		loc:     loc,
	}
}

// Locale returns the two letter language code.
func (f *Formatter) Locale() string {
	base, _ := f.tag.Base()
	return base.String()
}

// Timestamp formats t in the formatter's zone.
func (f *Formatter) Timestamp(t time.Time) string {
	return t.In(f.loc).Format(f.layout)
}

// Number formats v with at most maxFraction fraction digits.
func (f *Formatter) Number(v float64, maxFraction int) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(maxFraction)))
}
