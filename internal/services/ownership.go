package services

import (
	"cinecore/internal/apperr"
)

// Owned is any record that belongs to a single user.
type Owned interface {
	OwnerID() uint
}

// RequireOwner is the one authorization rule for edits and deletes: only the
// record's owner may change it.
func RequireOwner(rec Owned, userID uint, what string) error {
	if userID == 0 || rec.OwnerID() != userID {
		return apperr.Forbidden("only the author can modify this " + what)
	}
	return nil
}
