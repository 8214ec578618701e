// Package providers imports all built-in catalog providers for auto-registration.
// Import this package to have every provider registered with the default registry.
package providers

import (
	// Import all providers for side-effect registration
	_ "github.com/drblury/mediacatalog/provider/memory"
	_ "github.com/drblury/mediacatalog/provider/relational"
	_ "github.com/drblury/mediacatalog/provider/remotegrpc"
	_ "github.com/drblury/mediacatalog/provider/remotesse"
)
