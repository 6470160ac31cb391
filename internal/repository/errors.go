package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRestaurantNotFound   = errors.New("restaurant not found")
	ErrDuplicate            = errors.New("duplicate key")
)

// DuplicateError reports a unique constraint violation. It matches
// ErrDuplicate under errors.Is.
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate key (%s): %v", e.Constraint, e.Err)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// IsDuplicateOn reports whether err is a unique violation on the given column.
func IsDuplicateOn(err error, column string) bool {
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		return false
	}
	return strings.HasSuffix(dup.Constraint, column)
}

// classify turns driver unique-violation errors into *DuplicateError.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DuplicateError{Constraint: pgErr.ConstraintName, Err: err}
	}

	// sqlite: "UNIQUE constraint failed: restaurants.email"
	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed") {
		constraint := msg[strings.LastIndex(msg, ":")+1:]
		constraint = strings.TrimSpace(strings.ReplaceAll(constraint, ".", "_"))
		return &DuplicateError{Constraint: constraint, Err: err}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateError{Err: err}
	}

	return err
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
