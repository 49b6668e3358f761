package constants

import "strings"

// PDF is the only document extension the pipeline reads or writes.
const PDF = "pdf"

const (
	// StateFormPrefix marks raw state tax forms inside company subfolders.
	StateFormPrefix = "STFCS"
	CombinedPrefix  = "combined_"
	ManifestPrefix  = "manifest_"

	// Override workbooks live next to the state directory.
	IgnoreFile = "ignore.xlsx"
	OrderFile  = "order.xlsx"

	// TimestampLayout is the date/time part of artifact names; microseconds are appended separately.
	TimestampLayout = "20060102_150405"
)

const (
	BatchCapacity      = 30
	IdentityPageIndex  = 1 // zero-based
	LeadingPagesToDrop = 2
	SuffixDigits       = 6
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func IsPDFExt(ext string) bool {
	return NormalizeExt(ext) == PDF
}

// IsStateForm reports whether name is a raw STFCS*.pdf form (extension case-insensitive).
func IsStateForm(name string) bool {
	if !strings.HasPrefix(name, StateFormPrefix) {
		return false
	}
	i := strings.LastIndexByte(name, '.')
	return i > 0 && IsPDFExt(name[i:])
}
