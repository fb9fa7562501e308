package models

import "fmt"

// Gain is an amplifier multiplier. The device accepts the multiplier itself as
// a single raw byte.
type Gain uint8

// Gains lists every multiplier the sensor firmware accepts.
var Gains = []Gain{1, 2, 4, 5, 8, 10, 16, 32}

// Valid reports whether g is one of the supported multipliers.
func (g Gain) Valid() bool {
	for _, v := range Gains {
		if v == g {
			return true
		}
	}
	return false
}

// Byte returns the wire encoding of the gain command.
func (g Gain) Byte() byte {
	return byte(g)
}

func (g Gain) String() string {
	return fmt.Sprintf("x%d", uint8(g))
}
