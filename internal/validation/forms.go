package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// Result is the outcome of a single form field check.
// Normalized holds the cleaned value when Valid is true.
type Result struct {
	Valid      bool   `json:"valid"`
	Message    string `json:"message,omitempty"`
	Normalized string `json:"normalized,omitempty"`
}

func invalid(message string) Result {
	return Result{Valid: false, Message: message}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const maxEmailLength = 254

// allowedTLDs is the allowlist a website's top-level domain must be in.
var allowedTLDs = map[string]bool{
	"com": true, "net": true, "org": true, "io": true, "co": true,
	"us": true, "biz": true, "info": true, "app": true, "dev": true,
	"agency": true, "digital": true, "marketing": true, "online": true,
	"site": true, "store": true, "shop": true, "tech": true, "ai": true,
	"me": true, "tv": true, "ca": true, "uk": true, "au": true,
	"de": true, "edu": true, "gov": true, "law": true, "health": true,
	"salon": true, "restaurant": true, "realty": true,
}

// ValidateEmail checks email format.
func ValidateEmail(email string) Result {
	email = strings.TrimSpace(email)

	switch {
	case email == "":
		return invalid("Email is required")
	case len(email) > maxEmailLength:
		return invalid("Email is too long")
	case !emailRegex.MatchString(email):
		return invalid("Please enter a valid email address")
	}

	return Result{Valid: true, Normalized: strings.ToLower(email)}
}

// ValidatePhone accepts anything with ten digits, or eleven with a
// leading US country code, ignoring punctuation.
func ValidatePhone(phone string) Result {
	if strings.TrimSpace(phone) == "" {
		return invalid("Phone number is required")
	}

	digits := nationalDigits(phone)
	if len(digits) != 10 {
		return invalid("Please enter a valid 10-digit phone number")
	}

	return Result{Valid: true, Normalized: FormatPhoneNumber(digits)}
}

// FormatPhoneNumber masks input as the user types: "5551234567"
// becomes "(555) 123-4567". Partial input yields a partial mask and
// digits past the tenth are dropped.
func FormatPhoneNumber(input string) string {
	digits := nationalDigits(input)
	if len(digits) > 10 {
		digits = digits[:10]
	}

	switch {
	case len(digits) == 0:
		return ""
	case len(digits) < 4:
		return "(" + digits
	case len(digits) < 7:
		return "(" + digits[:3] + ") " + digits[3:]
	default:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}
}

// nationalDigits strips punctuation and a leading US country code.
func nationalDigits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// ValidateURL normalizes a website: "riva.com" becomes "https://riva.com".
// The host must have a top-level domain from the allowlist.
func ValidateURL(raw string) Result {
	cleaned := FormatURLInput(raw)
	if cleaned == "" {
		return invalid("Website is required")
	}

	if !strings.Contains(cleaned, "://") {
		cleaned = "https://" + cleaned
	}

	parsed, err := url.Parse(cleaned)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return invalid("Please enter a valid website address")
	}

	host := parsed.Hostname()
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return invalid("Please enter a valid website address")
	}
	for _, label := range labels {
		if label == "" {
			return invalid("Please enter a valid website address")
		}
	}

	if !allowedTLDs[labels[len(labels)-1]] {
		return invalid("Please enter a website with a supported domain ending")
	}

	normalized := parsed.Scheme + "://" + parsed.Host
	if path := strings.TrimSuffix(parsed.EscapedPath(), "/"); path != "" {
		normalized += path
	}
	if parsed.RawQuery != "" {
		normalized += "?" + parsed.RawQuery
	}

	return Result{Valid: true, Normalized: normalized}
}

// FormatURLInput cleans website input as the user types: whitespace is
// removed, the scheme and host are lowercased, and a repeated scheme
// ("https://https://") is collapsed.
func FormatURLInput(input string) string {
	s := strings.Join(strings.Fields(input), "")
	if s == "" {
		return ""
	}

	for {
		lower := strings.ToLower(s)
		schemeLen := schemePrefixLen(lower)
		if schemeLen == 0 || schemePrefixLen(lower[schemeLen:]) == 0 {
			break
		}
		s = s[schemeLen:]
	}

	schemeLen := schemePrefixLen(strings.ToLower(s))
	rest := s[schemeLen:]
	hostEnd := strings.IndexAny(rest, "/?#")
	if hostEnd == -1 {
		hostEnd = len(rest)
	}

	return strings.ToLower(s[:schemeLen+hostEnd]) + rest[hostEnd:]
}

func schemePrefixLen(lower string) int {
	switch {
	case strings.HasPrefix(lower, "https://"):
		return len("https://")
	case strings.HasPrefix(lower, "http://"):
		return len("http://")
	default:
		return 0
	}
}
