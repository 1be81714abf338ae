// Package harness runs production-chain scenarios as conformance tests.
//
// A scenario names a game data file, builds a state from groups of rows or
// from a stored fragment, and asserts on the reduced net flow.
//
// # Scenario Format
//
//	name: copper_cable
//	description: "What this scenario validates"
//	data: ../gamedata.yaml
//	overrides: { crafting: assembling-machine-2 }
//	groups:
//	  - name: Factory
//	    rows:
//	      - recipe: copper-cable
//	        machine: assembling-machine-1
//	        count: "2"
//	        modules: [speed-module, null]
//	        beacon: speed-module
//	        beacon_count: 2
//	assertions:
//	  - type: ingredient
//	    name: copper-plate
//	    amount: "2"
//	  - type: empty
//
// A scenario may give a fragment instead of groups; it is decoded through
// the migration chain. expect_error names the codec error code the decode
// must fail with.
//
// # Assertion Types
//
//   - ingredient: the net flow consumes name, at amount when given
//   - product: the net flow produces name, at amount when given
//   - absent: name appears in neither list
//   - empty: the net flow has no ingredients and no products
//   - count: the ingredient or product list has exactly count entries
//
// Every passing run also saves the state through SQLite and a fragment and
// checks that both reload to the same net flow.
//
// # Golden Files
//
// RunWithGolden compares the net flow and the saved payload against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
