package service

import (
	"fmt"
)

type ErrJobNotFound struct {
	error
}

func NewErrJobNotFound(id string) *ErrJobNotFound {
	return &ErrJobNotFound{fmt.Errorf("job %s not found", id)}
}

type ErrInvalidIntake struct {
	error
}

func NewErrInvalidIntake(reason string) *ErrInvalidIntake {
	return &ErrInvalidIntake{fmt.Errorf("bad request: %s", reason)}
}
