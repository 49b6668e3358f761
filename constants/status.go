package constants

// BatchKind tags which stream a batch came from.
type BatchKind string

const (
	BatchPrioritized BatchKind = "prioritized"
	BatchResidual    BatchKind = "residual"
)

// SkipReason is the stable reason code attached to every skipped document or order entry.
type SkipReason string

const (
	SkipFilenameMismatch          SkipReason = "filename_mismatch"
	SkipIgnored                   SkipReason = "ignored"
	SkipOrderEntryUnmatched       SkipReason = "order_entry_unmatched"
	SkipOrderedIdentityInResidual SkipReason = "ordered_identity_in_residual"
	SkipZipUnavailable            SkipReason = "zip_unavailable" // diagnostic only
	SkipMergeFailed               SkipReason = "merge_failed"
	SkipExtractionFailed          SkipReason = "extraction_failed"
	SkipInsufficientPages         SkipReason = "insufficient_pages"
	SkipWriteFailed               SkipReason = "write_failed"
)

// Excludes reports whether the reason removed something from output.
func (r SkipReason) Excludes() bool {
	return r != SkipZipUnavailable
}
