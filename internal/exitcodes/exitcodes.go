package exitcodes

// Exit codes for emptydir
// A completed walk exits Success no matter how many directories were removed
const (
	Success       = 0 // Walk completed
	InvalidArgs   = 2 // Bad root argument
	InvalidConfig = 3 // Configuration file invalid or unreadable
	RuntimeError  = 4 // Startup fault outside the walk (e.g. history database)
)
