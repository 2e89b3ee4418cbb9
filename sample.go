package catminator

import "strconv"

// microsecondsPerCentimeter is the round-trip time of sound over one centimeter
const microsecondsPerCentimeter = 58

// Sample is an echo pulse width in microseconds
type Sample int64

// NoEcho is returned when the echo did not complete before the timeout
const NoEcho Sample = -1

// Valid is false for NoEcho and any other negative width
func (s Sample) Valid() bool {
	return s >= 0
}

// Centimeters converts the pulse width to a distance. Only call it on a Valid sample
func (s Sample) Centimeters() int {
	return int(s / microsecondsPerCentimeter)
}

func (s Sample) String() string {
	if !s.Valid() {
		return "no echo"
	}
	return strconv.FormatInt(int64(s), 10) + "us"
}
