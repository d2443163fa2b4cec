package kernel

import (
	"errors"
	"fmt"
	"math"

	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

// ErrDimensionsAreNotConstructed is returned when validating zero Dimensions.
var ErrDimensionsAreNotConstructed = errs.NewValueIsRequiredError(
	"dimensions must be created via NewDimensions")

// Dimensions is the bounding box of a physical product unit, in the same
// length unit as the locker grid (centimetres in production).
//
// Example:
//
//	box, err := kernel.NewDimensions(20, 10, 40)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(box.Volume()) // 8000
type Dimensions struct { //nolint:recvcheck //using for validation
	length float64
	width  float64
	height float64
	guard  guard.ConstructorGuard
}

// NewDimensions validates that every side is finite and strictly positive.
func NewDimensions(length, width, height float64) (Dimensions, error) {
	d := Dimensions{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setLength(length),
		d.setWidth(width),
		d.setHeight(height),
	); err != nil {
		return Dimensions{}, err
	}

	return d, nil
}

// Validate reports whether the value was built through NewDimensions.
func (d Dimensions) Validate() error {
	return d.guard.Validate(ErrDimensionsAreNotConstructed)
}

func (d Dimensions) Length() float64 {
	return d.length
}

func (d Dimensions) Width() float64 {
	return d.width
}

func (d Dimensions) Height() float64 {
	return d.height
}

// Volume is length × width × height.
func (d Dimensions) Volume() float64 {
	return d.length * d.width * d.height
}

// Axes returns the sides in x, y, z order.
func (d Dimensions) Axes() [3]float64 {
	return [3]float64{d.length, d.width, d.height}
}

// Largest returns the longest side.
func (d Dimensions) Largest() float64 {
	return max(d.length, d.width, d.height)
}

// IsEqual compares the three sides.
func (d Dimensions) IsEqual(other Dimensions) bool {
	return d.length == other.length && d.width == other.width && d.height == other.height
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%gx%gx%g", d.length, d.width, d.height)
}

func (d *Dimensions) setLength(v float64) error {
	if err := checkSide("length", v); err != nil {
		return err
	}
	d.length = v
	return nil
}

func (d *Dimensions) setWidth(v float64) error {
	if err := checkSide("width", v); err != nil {
		return err
	}
	d.width = v
	return nil
}

func (d *Dimensions) setHeight(v float64) error {
	if err := checkSide("height", v); err != nil {
		return err
	}
	d.height = v
	return nil
}

// checkSide accepts finite lengths greater than zero.
func checkSide(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%g is not a finite number", v))
	}
	if v <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%g is not greater than 0", v))
	}
	return nil
}
