// Package all imports all built-in exambank extensions.
// Import this package to register all built-in commands.
package all

import (
	// Each registers itself via init()
	_ "github.com/jpl-au/exambank/extension/bundle"
	_ "github.com/jpl-au/exambank/extension/core"
	_ "github.com/jpl-au/exambank/extension/entity"
	_ "github.com/jpl-au/exambank/extension/tag"
)
