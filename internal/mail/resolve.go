package mail

import (
	"html"
	"regexp"
	"strings"
)

var (
	// Mail clients prepend reply/forward/gateway tags ("Re:", "Fwd:",
	// "[EXTERNAL]:") in any order and repetition; one greedy pass strips
	// them all, which also makes normalization idempotent.
	subjectPrefix = regexp.MustCompile(`(?i)^((\w+|\[.*?\]):\s*)+`)
	whitespace    = regexp.MustCompile(`\s+`)
	angledAddress = regexp.MustCompile(`<(.+?)>`)
)

// Identity is the resolved thread identity of a raw inbound message.
type Identity struct {
	ProspectEmail     string
	DisplayName       string
	NormalizedSubject string
}

// Resolve normalizes a raw sender string and subject line into a stable
// conversation key. It never fails: an empty subject resolves to "", and a
// sender without an angle-bracketed address is used verbatim.
func Resolve(rawSender, rawSubject string) Identity {
	email, name := ParseSender(rawSender)
	return Identity{
		ProspectEmail:     email,
		DisplayName:       name,
		NormalizedSubject: NormalizeSubject(rawSubject),
	}
}

// ParseSender extracts the address from a "Name <addr>" sender string.
// Without angle brackets the whole (unescaped, trimmed) string is the address.
func ParseSender(rawSender string) (email, displayName string) {
	cleaned := strings.TrimSpace(html.UnescapeString(rawSender))

	m := angledAddress.FindStringSubmatch(cleaned)
	if m == nil {
		return cleaned, cleaned
	}

	email = m[1]
	displayName = strings.TrimSpace(strings.SplitN(cleaned, "<", 2)[0])
	if displayName == "" {
		displayName = email
	}
	return email, displayName
}

// NormalizeSubject strips leading "word:" / "[anything]:" tags, collapses
// whitespace runs and trims. Idempotent: NormalizeSubject(NormalizeSubject(s))
// == NormalizeSubject(s) for all s. Whitespace is collapsed and trimmed
// before the prefix strip; the strip is anchored, so leading whitespace
// would otherwise shield a reply tag and split the thread key.
func NormalizeSubject(subject string) string {
	if subject == "" {
		return ""
	}
	normalized := strings.TrimSpace(whitespace.ReplaceAllString(subject, " "))
	normalized = subjectPrefix.ReplaceAllString(normalized, "")
	return strings.TrimSpace(normalized)
}

// ReplySubject prefixes "Re: " unless the subject already starts with it,
// case-insensitively.
func ReplySubject(originalSubject string) string {
	if strings.HasPrefix(strings.ToLower(originalSubject), "re: ") {
		return originalSubject
	}
	return "Re: " + originalSubject
}
