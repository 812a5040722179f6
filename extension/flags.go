// flags.go names the CLI flags shared across extensions, so the string used
// to define a flag and the one used to read it cannot drift apart.

package extension

const (
	// Boolean flags

	FlagDiff    = "diff"    // Show a diff of the change
	FlagDryRun  = "dry-run" // Preview without making changes
	FlagGlobal  = "global"  // Use the user-wide config file
	FlagLocal   = "local"   // Mark a bank as gitignored
	FlagRaw     = "raw"     // Plain output without rendering
	FlagReplace = "replace" // Replace rather than merge on update
	FlagShare   = "share"   // Mark a bank as committed

	// String flags

	FlagFile    = "file"    // Input file (YAML or JSON, - for stdin)
	FlagKind    = "kind"    // Entity kind
	FlagSince   = "since"   // Age such as 7d
	FlagStudent = "student" // Student id

	// Filter flags; repeatable on ls, single-valued elsewhere

	FlagExam     = "exam"     // Exam id
	FlagExternal = "external" // External student identifier
	FlagID       = "id"       // Entity id
	FlagMatch    = "match"    // Tag text pattern
	FlagSubject  = "subject"  // Subject id
	FlagTag      = "tag"      // Tag text pattern

	// Integer flags

	FlagLimit = "limit" // Limit number of results
	FlagScan  = "scan"  // Scan number
)
