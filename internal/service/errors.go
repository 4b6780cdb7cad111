package service

import "errors"

var (
	ErrStageLocked        = errors.New("stage is locked: previous stage not passed")
	ErrStageExamMismatch  = errors.New("stage does not belong to the given exam")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotOwner           = errors.New("exam belongs to another instructor")

	// ErrInvalidExamStructure marks authoring requests whose stages or
	// questions fail structural validation.
	ErrInvalidExamStructure = errors.New("invalid exam structure")
)
