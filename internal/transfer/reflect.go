package transfer

import (
	"errors"
	"reflect"
)

// ErrInvalidArgument is returned by Mark when passed a value that cannot
// carry a stable identity (and so cannot usefully be map-keyed).
var ErrInvalidArgument = errors.New("transfer: value must be a non-nil pointer or channel")

// Only kinds that are both non-nil-checkable and safe as Go map keys
// qualify: a map key must be comparable, which rules out slice and map
// values (and func values, save for comparison to nil) even though the
// source language treats any object as transferable.
func reflectIsReference(v any) bool {
	k := reflect.ValueOf(v).Kind()
	switch k {
	case reflect.Ptr, reflect.Chan:
		return true
	default:
		return false
	}
}
