// Package harness runs gear train scenarios against the real engine.
//
// A scenario is a YAML file naming a train (a train file or an inline
// train document), an optional compatibility mode and run ID, and a list of
// assertions over the calculation:
//
//	name: two_gear_reduction
//	description: 20T driving 40T doubles speed and halves torque
//	train_file: testdata/trains/reducer.cue
//	run_id: test-run-001
//	assertions:
//	  - type: edge
//	    from: 0
//	    to: 1
//	    speed: 2000
//	    torque: 5
//	  - type: final_gear
//	    gear: 1
//
// Expected torques are in newton-metres and radii in millimetres, the
// units results are reported in. Each scenario runs on a fresh engine with
// a fixed run ID and discarded logs, so the text report is stable and can
// be compared against a golden file (see RunWithGolden).
package harness
