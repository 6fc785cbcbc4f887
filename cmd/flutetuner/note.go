package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
)

func noteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "note [frequency]",
		Short: "Show the equal-tempered note nearest to a frequency in Hz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			freq, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid frequency %q: %w", args[0], err)
			}

			note, ok := tonal.FrequencyToNote(freq)
			if !ok {
				return fmt.Errorf("frequency must be positive and finite, got %s", args[0])
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.2f Hz: %s (MIDI %d, %+d cents, nominal %.2f Hz)\n",
				freq, note.FullName, note.MIDINumber, note.CentsOff, tonal.MIDIToFrequency(note.MIDINumber))
			return err
		},
	}
}
