// Package buttondown reads and mutates the Buttondown subscriber list.
//
// Client.ListSubscribers loads the mirror snapshot; the client also implements
// reconcile.Mutator, turning add, edit and delete operations into POST, PATCH
// and DELETE calls. Edits are sent to the subscriber's current address and carry
// only the fields the operation specifies.
//
// # Errors
//
// API failures are *rest.APIError values. Skippable builds the predicate the
// reconciler uses to turn address-specific rejections (blocked or invalid
// addresses by default) into warnings.
package buttondown
