// Package pricing resolves a reservation's total price in minor currency units.
package pricing

import (
	"errors"
	"math"
	"time"

	"probook/pkg/model"
)

var (
	ErrNonPositivePrice = errors.New("computed price must be positive")
	ErrInvalidDuration  = errors.New("duration must be a positive whole number of minutes")
	ErrNegativeRate     = errors.New("hourly rate cannot be negative")
	ErrPriceOverflow    = errors.New("price exceeds the representable range")
)

const (
	secondsPerHour = int64(time.Hour / time.Second)

	// MaxDuration is the longest single reservation.
	MaxDuration = 24 * time.Hour
)

// DurationFor returns the booked length. A catalog service fixes it and the
// requested duration is ignored.
func DurationFor(svc *model.Service, requested time.Duration) (time.Duration, error) {
	if svc != nil {
		requested = time.Duration(svc.DurationMinutes) * time.Minute
	}
	if requested <= 0 || requested > MaxDuration || requested%time.Minute != 0 {
		return 0, ErrInvalidDuration
	}
	return requested, nil
}

// PriceFor returns the service's fixed price when svc is set, otherwise
// hourlyRate prorated over duration and rounded half up to the minor unit.
// A result of zero or less is an error, never clamped.
func PriceFor(svc *model.Service, duration time.Duration, hourlyRate int64) (int64, error) {
	if svc != nil {
		if svc.Price <= 0 {
			return 0, ErrNonPositivePrice
		}
		return svc.Price, nil
	}

	if hourlyRate < 0 {
		return 0, ErrNegativeRate
	}
	if duration <= 0 {
		return 0, ErrInvalidDuration
	}

	seconds := int64(duration / time.Second)
	if seconds > 0 && hourlyRate > (math.MaxInt64-secondsPerHour/2)/seconds {
		return 0, ErrPriceOverflow
	}
	price := (hourlyRate*seconds + secondsPerHour/2) / secondsPerHour
	if price <= 0 {
		return 0, ErrNonPositivePrice
	}
	return price, nil
}
