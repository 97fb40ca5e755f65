package clinic

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyExists      = errors.New("already exists")
	ErrUnknownRole        = errors.New("unknown role")
	ErrPetAssigned        = errors.New("pet already has an owner")
	ErrPetNotLinked       = errors.New("pet is not linked to owner")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
