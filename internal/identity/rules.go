package identity

import (
	"regexp"
	"strings"
)

// NameRule finds a subject name in page lines. Each rule is pure and returns
// the first hit in line order.
type NameRule struct {
	Name  string
	Match func(lines []string) (first, last string, ok bool)
}

// ZipRule finds a postal code in page lines.
type ZipRule struct {
	Name  string
	Match func(lines []string) (zip string, ok bool)
}

const mailInstructionsMarker = "Instructions to Mail"

var (
	reUpperName = regexp.MustCompile(`^([A-Z][A-Z'\-]+)\s+([A-Z][A-Z'\-]+)$`)
	reStateZip  = regexp.MustCompile(`\b([A-Z]{2})\s+(\d{5})(?:-\d{4})?\b`)
)

// DefaultNameRules are tried in priority order: the mailing block label wins
// over a bare uppercase name line anywhere on the page.
var DefaultNameRules = []NameRule{
	{Name: "mail-instructions", Match: matchMailInstructions},
	{Name: "uppercase-line", Match: matchUppercaseLine},
}

var DefaultZipRules = []ZipRule{
	{Name: "state-zip", Match: matchStateZip},
}

// LookupZipRules serve ZipOf. The page is searched as one text, so the state
// code and the zip may be split across a line break.
var LookupZipRules = []ZipRule{
	{Name: "state-zip-page", Match: matchStateZipPage},
}

// matchMailInstructions takes the line after an "Instructions to Mail..." label
// when it holds exactly two tokens.
func matchMailInstructions(lines []string) (string, string, bool) {
	for i, line := range lines {
		if !strings.Contains(line, mailInstructionsMarker) || i+1 >= len(lines) {
			continue
		}
		parts := strings.Fields(lines[i+1])
		if len(parts) == 2 {
			return parts[0], parts[1], true
		}
	}
	return "", "", false
}

func matchUppercaseLine(lines []string) (string, string, bool) {
	for _, line := range lines {
		if m := reUpperName.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

// matchStateZip looks for "ST 12345" or "ST 12345-6789" and keeps the five digits.
func matchStateZip(lines []string) (string, bool) {
	for _, line := range lines {
		if m := reStateZip.FindStringSubmatch(line); m != nil {
			return m[2], true
		}
	}
	return "", false
}

func matchStateZipPage(lines []string) (string, bool) {
	if m := reStateZip.FindStringSubmatch(strings.Join(lines, "\n")); m != nil {
		return m[2], true
	}
	return "", false
}
