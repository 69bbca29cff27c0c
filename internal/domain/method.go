package domain

// Method is the search strategy.
type Method string

// Search method constants.
const (
	// MethodHybrid fuses keyword and vector rankings.
	MethodHybrid Method = "hybrid"
	MethodBM25   Method = "bm25"
	MethodVector Method = "vector"
)

// IsValid checks if the method is one of the supported values.
func (m Method) IsValid() bool {
	return m == MethodHybrid || m == MethodBM25 || m == MethodVector
}
