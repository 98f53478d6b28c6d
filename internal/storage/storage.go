package storage

import "errors"

var (
	ErrUserExists     = errors.New("user already exists")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrUserNotFound   = errors.New("user not found")
	ErrNotFound       = errors.New("record not found")
	ErrConflict       = errors.New("record already exists")
	ErrReferenced     = errors.New("record is referenced by other records")
	ErrAlreadyMember  = errors.New("user already a member")
	ErrNotMember      = errors.New("user not a member")
	ErrCollabExists   = errors.New("collaboration already exists")
	ErrInvalidForeign = errors.New("referenced record does not exist")
)
