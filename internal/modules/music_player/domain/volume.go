package domain

import "fmt"

const (
	MinVolumePercent = 1
	MaxVolumePercent = 100

	// transportHeadroom divides the volume fraction before it reaches the
	// transport, so 100% plays at a fifth of full gain.
	transportHeadroom = 5
)

// DefaultVolume is the volume of a freshly created session.
var DefaultVolume = Volume{fraction: 0.5}

// Volume is a playback volume stored as a fraction in (0, 1].
type Volume struct {
	fraction float64
}

// NewVolume validates a percentage in [1, 100].
func NewVolume(percent int) (Volume, error) {
	if percent < MinVolumePercent || percent > MaxVolumePercent {
		return Volume{}, fmt.Errorf("%w: got %d", ErrInvalidVolume, percent)
	}
	return Volume{fraction: float64(percent) / 100}, nil
}

func (v Volume) Fraction() float64 {
	return v.fraction
}

func (v Volume) Percent() int {
	return int(v.fraction*100 + 0.5)
}

// TransportGain is the gain applied to the audio transport.
func (v Volume) TransportGain() float64 {
	return v.fraction / transportHeadroom
}

func (v Volume) String() string {
	return fmt.Sprintf("%d%%", v.Percent())
}
