package pipeline

// Default values for document processing and normalization.
// These can be overridden via configuration or environment variables in the future.
const (
	// DefaultSourceSystem is the default source system for documents.
	DefaultSourceSystem = "TRADE_REPUBLIC"

	// DefaultNormalizeWorkers is the number of concurrent event conversions per run.
	DefaultNormalizeWorkers = 4
)
