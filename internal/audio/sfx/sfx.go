// Package sfx holds the sound ids and channel handles shared by the
// effects core and the mixer, without linking any audio device code.
package sfx

// MaxVolume is the loudest per-sound volume effects ask for.
const MaxVolume = 128

// Channel identifies a playing sound. NoChannel means nothing is playing.
type Channel int

const NoChannel Channel = -1

// Well-known game sound effects.
const (
	Explosion  = 9
	Hit        = 22
	Earthquake = 60
	Thunder    = 62
)
