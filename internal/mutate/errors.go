package mutate

import (
	"errors"
	"fmt"
)

var ErrListFull = errors.New("list is full")

type UnknownOpError struct {
	Kind string
}

func (e UnknownOpError) Error() string {
	if e.Kind == "" {
		return "missing op"
	}
	return fmt.Sprintf("unknown op: %s", e.Kind)
}

type InvalidArgError struct {
	Field string
	Value string
}

func (e InvalidArgError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}
