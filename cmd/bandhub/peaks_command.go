package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LMSBAND/bandhub/internal/waveform"
)

type peaksOutput struct {
	File     string    `json:"file"`
	Duration float64   `json:"duration"`
	Peaks    []float64 `json:"peaks"`
}

func newPeaksCommand() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "peaks FILE",
		Short: "Print the duration and normalized waveform peaks of an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read audio: %w", err)
			}
			dur, peaks := waveform.Extract(data, n)
			return writeJSON(cmd, peaksOutput{File: args[0], Duration: dur, Peaks: peaks})
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", waveform.DefaultPeaks, "Number of peaks")
	return cmd
}
