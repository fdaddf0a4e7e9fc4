package email

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Template names an embedded HTML template under templates/.
type Template string

const (
	TemplateContactNotification Template = "contact_notification"
	TemplateContactAutoreply    Template = "contact_autoreply"
	TemplateLeadMagnet          Template = "lead_magnet"
	TemplateWelcome             Template = "welcome"
	TemplatePaymentFailed       Template = "payment_failed"
	TemplateDailyDigest         Template = "daily_digest"
)

// Templates lists every template, in the order the preview index shows them.
var Templates = []Template{
	TemplateContactNotification,
	TemplateContactAutoreply,
	TemplateLeadMagnet,
	TemplateWelcome,
	TemplatePaymentFailed,
	TemplateDailyDigest,
}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("email").
		Funcs(sprig.FuncMap()).
		Funcs(template.FuncMap{"dollars": dollars}).
		ParseFS(templateFS, "templates/*.html"),
)

// dollars formats cents as "$1,234.56".
func dollars(cents any) string {
	amount := decimal.New(toInt64(cents), -2).StringFixed(2)

	whole, frac := amount[:len(amount)-3], amount[len(amount)-3:]
	neg := false
	if len(whole) > 0 && whole[0] == '-' {
		neg, whole = true, whole[1:]
	}

	var b []byte
	for i, r := range []byte(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b = append(b, ',')
		}
		b = append(b, r)
	}

	out := "$" + string(b) + frac
	if neg {
		out = "-" + out
	}
	return out
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Render executes tmpl with data, normally one of the *Data structs.
func Render(tmpl Template, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(tmpl)+".html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", tmpl)
	}
	return body.String(), nil
}
