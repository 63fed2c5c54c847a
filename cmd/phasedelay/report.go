package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-phase/dsp/buffer"
	"github.com/cwbudde/algo-phase/dsp/core"
	"github.com/cwbudde/algo-phase/pipeline"
	"github.com/cwbudde/algo-phase/stats/frequency"
	timestats "github.com/cwbudde/algo-phase/stats/time"
)

func printStages(w io.Writer, reports []pipeline.StageReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tStage\tChanged\tElapsed\n")
	fmt.Fprintf(tw, "-\t-----\t-------\t-------\n")
	for _, r := range reports {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", int(r.Stage), r.Stage, r.Changed, r.Elapsed)
	}
	return tw.Flush()
}

// printChannels writes one line of time and frequency statistics per
// channel of m. Frequencies are in Hz when sampleRate is known.
func printChannels(w io.Writer, labels []string, m *buffer.Matrix, sampleRate float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tMean [ps]\tStd [ps]\tMin [ps]\tMax [ps]\tPeak [Hz]\tPeak [dB]\tCentroid [Hz]\n")
	fmt.Fprintf(tw, "-------\t---------\t--------\t--------\t--------\t---------\t---------\t-------------\n")

	for i := range m.Rows() {
		row := m.Row(i)
		label := fmt.Sprintf("ch%d", i)
		if i < len(labels) {
			label = labels[i]
		}

		s := timestats.Summarize(row)
		peak, peakDB, centroid := "-", "-", "-"
		if f, err := frequency.Analyze(row, sampleRate); err == nil {
			peak = fmt.Sprintf("%.4f", f.PeakHz)
			peakDB = fmt.Sprintf("%.1f", core.PowerDB(f.PeakPower))
			centroid = fmt.Sprintf("%.4f", f.Centroid)
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\t%s\t%s\n",
			label, s.Mean, s.StdDev, s.Min, s.Max, peak, peakDB, centroid)
	}
	return tw.Flush()
}
