package exitcodes

// Exit codes for the junksweep CLI
// These codes form the operational contract with scripts and operators
const (
	Success       = 0 // Successful execution
	InvalidConfig = 2 // Configuration file invalid or missing
	PartialDelete = 3 // One or more requested deletions failed
	RuntimeError  = 4 // Runtime error during execution
)
