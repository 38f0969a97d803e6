// Package reconcile converges a mirrored subscription list onto an authoritative
// source roster.
//
// The engine compares two snapshots that are keyed differently: source records
// are keyed by identifier, while the mirror enforces one subscriber per email and
// only links records back to the source through the "id" metadata entry. The
// result is an ordered log of add, edit and delete operations that never places
// two mirror records at one email, even after a partial run.
//
// # Algorithm
//
// A run proceeds in fixed order, each step observing the effects of the previous ones:
//
//  1. Source records sharing an email are collapsed to the first one in load order,
//     with one warning per collapsed email.
//  2. Mirror records without an identifier are either reported as direct signups
//     (email unknown to the source) or relinked with an immediate edit.
//  3. The union of identifiers is processed in ascending order. For each identifier
//     the engine deletes records with no source counterpart, frees the desired email
//     from any other identifier, adds a missing record, deletes surplus records and
//     finally edits the remaining record field by field.
//
// # Gateway
//
// Every operation is validated against a working copy of the mirror index, then
// forwarded to the Mutator unless Spec.DryRun is set, then committed locally. Dry
// runs and live runs therefore produce the same operation log. Mutator errors
// matched by Spec.Skippable become warnings and abandon the current identifier;
// any other error aborts the run with a MutationError.
//
// # Usage
//
//	spec := &reconcile.Spec{
//	    Mutator:   client,
//	    Skippable: buttondown.Skippable("email_blocked", "email_invalid"),
//	    Logger:    log,
//	}
//
//	result, err := reconcile.Reconcile(ctx, spec, sourceRecords, mirrorRecords)
//	if err != nil {
//	    return err
//	}
//	for _, w := range result.Warnings {
//	    fmt.Println(w)
//	}
//
// ComputeDrift offers a read-only comparison of the same snapshots.
package reconcile
