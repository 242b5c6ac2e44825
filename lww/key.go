package lww

// Key identifies a single write in the total order used for conflict
// resolution. Fields are compared lexicographically, each as a signed
// 64-bit integer, ascending.
type Key struct {
	// Timestamp is the logical or wall-clock time of the write.
	Timestamp int64

	// OriginID identifies the writer/replica that produced the update.
	OriginID int64

	// SequenceID is a monotonic counter scoped to OriginID, disambiguating
	// same-timestamp writes from the same origin.
	SequenceID int64
}

// Compare returns -1 if k orders before other, 1 if after, and 0 if the
// keys are identical.
func (k Key) Compare(other Key) int {
	switch {
	case k.Timestamp < other.Timestamp:
		return -1
	case k.Timestamp > other.Timestamp:
		return 1
	}
	switch {
	case k.OriginID < other.OriginID:
		return -1
	case k.OriginID > other.OriginID:
		return 1
	}
	switch {
	case k.SequenceID < other.SequenceID:
		return -1
	case k.SequenceID > other.SequenceID:
		return 1
	}
	return 0
}

// Beats reports whether k strictly wins over other. Equal keys never beat
// each other, so an existing winner is kept on a full-key tie.
func (k Key) Beats(other Key) bool {
	return k.Compare(other) == 1
}

// Update is one candidate write: an opaque payload plus the Key that
// positions it in the total order. A nil Value is treated as a NULL payload.
type Update struct {
	Value Value
	Key
}
