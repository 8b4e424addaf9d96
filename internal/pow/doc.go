/*
Package pow implements the hashcash-style commitment that every chat message
carries before it is eligible for broadcast.

A commitment binds a ChatMessage to a nonce. The digest is the lowercase hex
SHA-256 of

	timestamp || message || sender || decimal(nonce)

with no separators, and it must begin with `difficulty` ASCII '0'
characters. Engine.Solve walks nonces upward from zero and returns the first
one that satisfies the target, so identical inputs always give the same
commitment. Engine.Verify recomputes the digest from the carried fields and
never trusts the stored hash on its own.

Searches are CPU bound and never yield, so the server runs them on a
SolverPool rather than on the goroutines serving connections.
*/
package pow
