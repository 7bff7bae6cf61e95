package utils

import "errors"

// PermError is an error that retry loops must not retry
type PermError string

func (e PermError) Error() string {
	return string(e)
}

func (e PermError) IsPermanent() bool {
	return true
}

// IsPermanent reports whether err, or anything it wraps, is a PermError
func IsPermanent(err error) bool {
	var pe PermError
	return errors.As(err, &pe)
}
