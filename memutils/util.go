package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~uint32 | ~uint64
}

// CheckPow2 returns an error wrapping PowerOfTwoError if number is not a power of two. Zero passes
// this check; callers that cannot accept a zero value must reject it separately.
func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a nonzero power of two.
// No validation is performed.
func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// AlignForward is the checked form of AlignUp: it returns offset unchanged if it is already a
// multiple of alignment, or the next multiple otherwise. An alignment of zero or one that is
// not a power of two produces an error wrapping PowerOfTwoError.
func AlignForward(offset int, alignment uint) (int, error) {
	if alignment == 0 {
		return offset, cerrors.Wrap(PowerOfTwoError, "alignment is 0")
	}
	err := CheckPow2(alignment, "alignment")
	if err != nil {
		return offset, err
	}

	return AlignUp(offset, alignment), nil
}
