package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateErr reports whether an insert hit a unique constraint. The
// string checks cover drivers that predate gorm's error translation.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// IsDuplicate is the exported form used by services that need to resolve
// a lost insert race by reading back the winning row.
func IsDuplicate(err error) bool { return isDuplicateErr(err) }
