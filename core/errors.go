package core

import "errors"

// Errors returned by the comparison engine. Callers match them with errors.Is.
var (
	// ErrUnsupportedReport means the report method never takes part in comparisons.
	ErrUnsupportedReport = errors.New("report does not support comparison")

	// ErrInvalidInput means the comparison request or the base table is malformed.
	ErrInvalidInput = errors.New("invalid comparison input")

	// ErrVariantFetch means the report executor failed for one of the variants.
	ErrVariantFetch = errors.New("variant fetch failed")

	// ErrMappingGap means a comparison column kept its numeric metric id after formatting.
	ErrMappingGap = errors.New("metric id has no display name")
)
