// Package receipt contains the Receipt aggregate and the pure transformations
// of its lifecycle: creation, provider signature, cancellation and integrity
// verification.
//
// Every transformation returns a new *Receipt and leaves its input untouched.
// The human facing number (RECIBO-YYYY-NNNNN) is cosmetic; identity is the
// UUID held in the aggregate root.
//
//	draft (rascunho) --sign--> signed (assinado)
//	draft | signed   --cancel--> cancelled (cancelado)
package receipt
