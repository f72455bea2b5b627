// Package exitcode exports chatlink's exit status numbers.
package exitcode

const (
	// Success is returned when chatlink finished without error.
	Success = iota
	// UsageError is returned when there was a syntax or usage error in the arguments.
	UsageError
	// UncategorizedError is returned for any error not categorised otherwise.
	UncategorizedError
	// FileNotFound is returned when the input file is not found.
	FileNotFound
	// CorruptInput is returned when text or chat messages could not be decoded.
	CorruptInput
	// Incomplete is returned when the input ended before every transfer was complete.
	Incomplete
)
