package store

import (
	"errors"
	"fmt"
)

type ErrJobNotFound struct {
	error
}

func NewErrJobNotFound(id string) *ErrJobNotFound {
	return &ErrJobNotFound{fmt.Errorf("job %s not found", id)}
}

type ErrJobAlreadyExists struct {
	error
}

func NewErrJobAlreadyExists(id string) *ErrJobAlreadyExists {
	return &ErrJobAlreadyExists{fmt.Errorf("job %s already exists", id)}
}

// IsNotFound reports whether err is a job-not-found error.
func IsNotFound(err error) bool {
	var notFound *ErrJobNotFound
	return errors.As(err, &notFound)
}
