package types

import (
	"time"
)

// Outcome names what an instruction did to its target
type Outcome string

const (
	// OutcomeCreated means the target was absent and has been created
	OutcomeCreated Outcome = "created"

	// OutcomeUpdated means existing content or permissions were replaced
	OutcomeUpdated Outcome = "updated"

	// OutcomeUnchanged means the target already matched the source
	OutcomeUnchanged Outcome = "unchanged"

	// OutcomeLinked means a symbolic link to the source was created
	OutcomeLinked Outcome = "linked"

	// OutcomeSkipped means link mode found an existing symlink and left it
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed marks the instruction that halted the run
	OutcomeFailed Outcome = "failed"
)

// ActionResult represents the outcome of executing one instruction
type ActionResult struct {
	// Instruction that was executed
	Instruction Instruction

	// Target is the absolute destination path
	Target string

	// State is what occupied Target before the instruction ran
	State TargetState

	// Outcome summarises the effect
	Outcome Outcome

	// Error contains the failure that halted the run, if any
	Error error

	// Message provides additional information about the result
	Message string

	// Duration is how long the instruction took to execute
	Duration time.Duration
}
