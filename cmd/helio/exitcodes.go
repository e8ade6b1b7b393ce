package main

// Exit codes
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (missing repository, invalid config)
	ExitDataError     = 3 // Data error (malformed JSONL, integrity problems)
	ExitNotFound      = 4 // Referenced document does not exist
	ExitUnauthorized  = 5 // No submitter identity for an association
	ExitUnprocessable = 6 // Association refused (malformed triple, wrong predicate or role)
)
