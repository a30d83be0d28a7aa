package model

// RefCount implements domain.RefCounted for components held by shared owners.
// It is not safe for concurrent use.
type RefCount struct {
	holders int
}

// Retain records one more holder.
func (r *RefCount) Retain() {
	r.holders++
}

// Release drops one holder and reports whether it was the last. Releasing
// with no holders left reports false, so a component is closed once.
func (r *RefCount) Release() bool {
	if r.holders == 0 {
		return false
	}
	r.holders--
	return r.holders == 0
}

// Holders returns the number of shared holders.
func (r *RefCount) Holders() int {
	return r.holders
}
