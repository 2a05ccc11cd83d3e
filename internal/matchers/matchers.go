// Package matchers imports all shape matcher packages to trigger their
// init() registration. Import this package for side effects only.
package matchers

import (
	// Import all matcher packages to register them with the registry.
	_ "notam_parser/internal/matchers/arc"
	_ "notam_parser/internal/matchers/chain"
	_ "notam_parser/internal/matchers/circle"
	_ "notam_parser/internal/matchers/corridor"
	_ "notam_parser/internal/matchers/ellipse"
	_ "notam_parser/internal/matchers/sector"
)
