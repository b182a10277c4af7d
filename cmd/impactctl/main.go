// Command impactctl runs impact calculations and maintains the regression
// fixtures from the command line.
//
// Usage:
//
//	impactctl calc --diameter 0.37 --velocity 7.42 --composition stony
//	impactctl presets
//	impactctl fixtures --out data/fixtures/impact_fixtures.json
//	impactctl verify --fixtures data/fixtures/impact_fixtures.json
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
