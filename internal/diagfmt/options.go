package diagfmt

// PrettyOpts configures human-readable diagnostic output.
type PrettyOpts struct {
	// Color enables ANSI styling of severities.
	Color bool
	// Preview adds the offending source line with a caret underline.
	Preview bool
}

// JSONOpts configures machine-readable diagnostic output.
type JSONOpts struct {
	// IncludeNotes carries secondary notes into the payload.
	IncludeNotes bool
}
