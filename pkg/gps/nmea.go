package gps

import (
	"errors"
	"strings"

	"github.com/adrianmo/go-nmea"
)

// Fix is the position extracted from a GPS sentence.
type Fix struct {
	Latitude  float64
	Longitude float64
}

// ParseGGA parses a $GPGGA NMEA sentence as emitted by collar GPS modules and
// returns the fix it carries. Sentences that are not GGA, or that report no
// satellite fix, are rejected.
func ParseGGA(sentence string) (Fix, error) {
	parsed, err := nmea.Parse(strings.TrimSpace(sentence))
	if err != nil {
		return Fix{}, err
	}

	gga, ok := parsed.(nmea.GGA)
	if !ok {
		return Fix{}, errors.New("not a GGA sentence")
	}
	if gga.FixQuality == nmea.Invalid {
		return Fix{}, errors.New("sentence reports no GPS fix")
	}

	return Fix{
		Latitude:  gga.Latitude,
		Longitude: gga.Longitude,
	}, nil
}
