// Package errors provides the structured error type used across guild-progression.
//
// Every error carries a Code, a user-facing Message, an optional Cause and
// free-form metadata:
//
//	err := errors.NotFoundf("player %s not found", dcID).
//	    WithMeta("guild_id", guildID)
//
// # Rejections
//
// Business-rule violations (accepting a second task, spending more currency
// than a balance holds, naming an unknown currency) are not failures of the
// system. They are returned as rejections: a FailedPrecondition or
// InvalidArgument error tagged with a machine readable reason and no state
// change behind it.
//
//	return errors.Rejected(errors.CodeFailedPrecondition, ReasonTaskAlreadyAssigned,
//	    "player already has an active task")
//
// Callers branch on the reason rather than parsing messages:
//
//	if errors.HasReason(err, progression.ReasonInsufficientBalance) {
//	    // tell the participant they cannot afford it
//	}
//
// # Layer guidelines
//
// Entities return rejections and OutOfRange errors only.
//
// Repositories return NotFound for absent records, InvalidArgument for
// malformed records and wrap driver errors with Wrap so they surface as
// Internal.
//
// Orchestrators validate inputs with the ValidationBuilder, pass rejections
// through untouched and wrap repository errors with context.
package errors
