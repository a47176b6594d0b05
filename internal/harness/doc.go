// Package harness runs bfi programs from YAML scenario files and checks
// what they produce.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	program: "++++++++[>++++++<-]>."   # or program_file: relative/path.b
//	input: "text fed to the input preset"
//	input_values: [1, 2, 3]            # raw cell values instead of input
//	input_format: ascii                # ascii | decimal | latin1
//	output_format: ascii
//	separator: "\n"                    # decimal output separator
//	eof: zero                          # zero | minus-one | error
//	tape_size: 30000
//	cell_bits: 8
//	bounds: reject                     # reject | wrap
//	max_steps: 0
//	expect:
//	  status: halted                   # halted | faulted
//	  output: "0"                      # rendered text
//	  output_values: [48]
//	  tape: [0, 48]                    # prefix of the final tape
//	  pointer: 1
//	  error:
//	    code: E301
//	    contains: "out of bounds"
//
// Unknown keys are rejected so typos fail loudly.
//
// # Deterministic Testing
//
// Every scenario runs on a fresh session with a sequential run ID and is
// recorded in an in-memory SQLite store. The result is read back from the
// store, so a passing scenario also proves the history round trip.
//
// # Usage
//
//	scenarios, err := harness.LoadDir("testdata/scenarios")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range scenarios {
//	    result, err := harness.Run(s)
//	    ...
//	}
//
// Tests can pin the full result with RunWithGolden.
package harness
