package tonal

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

const (
	a4Frequency  = 440.0
	a4MIDINumber = 69
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteInfo is the equal-tempered note nearest to a frequency (A4 = 440 Hz = MIDI 69)
type NoteInfo struct {
	Note       string `json:"note"`      // pitch class, e.g. "A#"
	Octave     int    `json:"octave"`    // scientific pitch notation, C4 = middle C
	FullName   string `json:"full_name"` // e.g. "A#4"
	MIDINumber int    `json:"midi_number"`
	CentsOff   int    `json:"cents_off"` // -50..50, positive means sharp
}

func (n NoteInfo) String() string {
	return fmt.Sprintf("%s %+d¢", n.FullName, n.CentsOff)
}

// FrequencyToNote maps a frequency in Hz to the nearest note. ok is false for
// non-positive or non-finite input.
func FrequencyToNote(frequency float64) (note NoteInfo, ok bool) {
	if !common.IsFinite(frequency) || frequency <= 0 {
		return NoteInfo{}, false
	}

	exactMIDI := 12*math.Log2(frequency/a4Frequency) + a4MIDINumber
	midi := int(math.Round(exactMIDI))

	name := pitchClassNames[((midi%12)+12)%12]
	octave := int(math.Floor(float64(midi)/12)) - 1

	return NoteInfo{
		Note:       name,
		Octave:     octave,
		FullName:   fmt.Sprintf("%s%d", name, octave),
		MIDINumber: midi,
		CentsOff:   int(math.Round((exactMIDI - float64(midi)) * 100)),
	}, true
}

// MIDIToFrequency returns the equal-tempered frequency of a MIDI note number
func MIDIToFrequency(midi int) float64 {
	return a4Frequency * math.Pow(2, float64(midi-a4MIDINumber)/12)
}
