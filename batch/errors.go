package batch

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/batchalloc/memutils"
)

var (
	// ErrMemoryTypeUnavailable is returned when no memory type legal for a resource has every
	// Include.Required property and none of the Exclude.Required properties.
	ErrMemoryTypeUnavailable = errors.New("no memory type satisfies the required memory properties")
	// ErrInvalidAlignment is returned when the device reports an alignment that is not a nonzero
	// power of two.
	ErrInvalidAlignment = memutils.PowerOfTwoError
	// ErrInvalidRequirements is returned when the device reports memory requirements that cannot be
	// allocated, such as a zero size.
	ErrInvalidRequirements = errors.New("invalid memory requirements")
	// ErrAllocationFailed marks errors from the device memory allocation command
	ErrAllocationFailed = errors.New("device memory allocation failed")
	// ErrBindFailed marks errors from the bulk bind commands
	ErrBindFailed = errors.New("binding resources to device memory failed")
)

// ErrorKind classifies an error returned from AllocateBatch
type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindUnknown
	ErrorKindMemoryTypeUnavailable
	ErrorKindInvalidAlignment
	ErrorKindInvalidRequirements
	ErrorKindAllocationFailed
	ErrorKindBindFailed
)

var errorKindMapping = make(map[ErrorKind]string)

func (k ErrorKind) String() string {
	return errorKindMapping[k]
}

func init() {
	errorKindMapping[ErrorKindNone] = "ErrorKindNone"
	errorKindMapping[ErrorKindUnknown] = "ErrorKindUnknown"
	errorKindMapping[ErrorKindMemoryTypeUnavailable] = "ErrorKindMemoryTypeUnavailable"
	errorKindMapping[ErrorKindInvalidAlignment] = "ErrorKindInvalidAlignment"
	errorKindMapping[ErrorKindInvalidRequirements] = "ErrorKindInvalidRequirements"
	errorKindMapping[ErrorKindAllocationFailed] = "ErrorKindAllocationFailed"
	errorKindMapping[ErrorKindBindFailed] = "ErrorKindBindFailed"
}

// KindOf reports which ErrorKind err belongs to. A nil error is ErrorKindNone, and errors that did
// not originate from this package's sentinels are ErrorKindUnknown.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrMemoryTypeUnavailable):
		return ErrorKindMemoryTypeUnavailable
	case errors.Is(err, ErrInvalidAlignment):
		return ErrorKindInvalidAlignment
	case errors.Is(err, ErrInvalidRequirements):
		return ErrorKindInvalidRequirements
	case errors.Is(err, ErrAllocationFailed):
		return ErrorKindAllocationFailed
	case errors.Is(err, ErrBindFailed):
		return ErrorKindBindFailed
	}

	return ErrorKindUnknown
}
