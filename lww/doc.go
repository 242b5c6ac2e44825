// Package lww implements deterministic last-writer-wins conflict resolution
// over a stream of candidate updates belonging to one logical key.
//
// Candidates are ordered by the lexicographic key (timestamp, origin id,
// sequence id), each field compared as a signed 64-bit integer. The
// Accumulator folds candidates one at a time, in any order, and reports the
// payload of the candidate with the greatest key. A NULL payload can only win
// by arriving first; it never displaces a stored non-NULL winner.
package lww
