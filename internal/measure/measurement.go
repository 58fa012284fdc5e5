package measure

// Measurement is the atomic fact of the pipeline: one parameter measured at
// one station. Immutable once parsed; normalization returns a copy.
type Measurement struct {
	StationID string
	// Parameter is the canonical parameter ID after normalization, or the
	// raw source label while Untranslated is true.
	Parameter string
	// Label preserves the source-language label the cell was parsed under.
	Label  string
	Value  Value
	Unit   string
	Matrix Matrix
	// Untranslated marks labels the dictionary does not know. They pass
	// through unchanged and classify as "no guideline" downstream.
	Untranslated bool
}
