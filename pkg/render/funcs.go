package render

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatCount groups digits in thousands with spaces (1 523 440).
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatLatency renders a round trip in whole milliseconds.
func FormatLatency(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Round(time.Millisecond).Milliseconds())
}

func GetTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatCount":   FormatCount,
		"formatLatency": FormatLatency,
		"title":         cases.Title(language.Und).String,
		"derefInt": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
	}
}
