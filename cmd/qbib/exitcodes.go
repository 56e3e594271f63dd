package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure, lock held)
	ExitConfigError = 2 // Configuration error (no master configured, bad config file)
	ExitDataError   = 3 // Data error (unreadable or malformed bibliography)
	ExitDuplicates  = 4 // Duplicates found, or an input still has internal duplicates
	ExitAmbiguous   = 5 // Two entries matched but could not be confirmed as one work
)
