package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/cordrift/collapse"
	"github.com/katalvlaran/cordrift/drift"
	"github.com/katalvlaran/cordrift/events"
	"github.com/katalvlaran/cordrift/internal/trackio"
	"github.com/katalvlaran/cordrift/simulator"
)

func simulateCmd(opts *options) *cobra.Command {
	var (
		output                string
		beads, cycles, length int
		seed                  int64
		noise, zscale, tscale float64
		nevents               int
		amplitude, missing    float64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Write a synthetic track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if missing < 0 || missing >= 1 || noise < 0 || tscale <= 0 || nevents < 0 {
				return errors.New("cordrift simulate: invalid parameters")
			}
			tr := simulator.NewTrack(beads, cycles, length, seed,
				simulator.WithNoise(noise),
				simulator.WithDrift(zscale, tscale),
				simulator.WithEvents(nevents, amplitude),
				simulator.WithMissing(missing))
			opts.log.WithField("beads", len(tr.Data)).Info("cordrift: simulated")

			return write(cmd, output, tr.Data)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "-", "output CSV (- for stdout)")
	f.IntVar(&beads, "beads", 4, "number of beads")
	f.IntVar(&cycles, "cycles", 20, "cycles per bead")
	f.IntVar(&length, "length", 200, "frames per cycle")
	f.Int64Var(&seed, "seed", 1, "random seed")
	f.Float64Var(&noise, "noise", 0.01, "Gaussian noise sigma")
	f.Float64Var(&zscale, "zscale", 0.2, "thermal drift amplitude")
	f.Float64Var(&tscale, "tscale", 100, "thermal drift time constant, in frames")
	f.IntVar(&nevents, "events", 3, "steps per cycle")
	f.Float64Var(&amplitude, "amplitude", 1, "largest step")
	f.Float64Var(&missing, "missing", 0, "probability of a missing sample")

	return cmd
}

func eventsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "events TRACK.csv",
		Short: "Print the events of every cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			track, err := trackio.ReadFile(args[0])
			if err != nil {
				return err
			}
			evcfg := events.DefaultConfig()
			if cfg.Events != nil {
				evcfg = *cfg.Events
			}
			det := events.NewDetector(evcfg)

			w := cmd.OutOrStdout()
			for _, bead := range drift.Track(track).Beads() {
				log := opts.log.WithField("bead", bead)
				sigma, err := cfg.Precision.Resolve(0, track[bead]...)
				if err != nil {
					log.WithError(err).Warn("cordrift: skipped bead")
					continue
				}
				for c, cycle := range track[bead] {
					found, err := det.Detect(cycle, sigma)
					if err != nil {
						return err
					}
					ivs := make([]string, len(found))
					for i, iv := range found {
						ivs[i] = fmt.Sprintf("[%d, %d)", iv.Start, iv.Stop)
					}
					fmt.Fprintf(w, "%d\t%d\t%s\n", bead, c, strings.Join(ivs, " "))
				}
			}

			return nil
		},
	}
}

func profileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile TRACK.csv",
		Short: "Print the drift profile of every bead, or of every cycle with --onbeads=false",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := opts.runner(cmd, args[0])
			if err != nil {
				return err
			}
			track, err := trackio.ReadFile(args[0])
			if err != nil {
				return err
			}
			profs, err := runner.Profiles(cmd.Context(), track)
			if err != nil {
				return err
			}

			return printProfiles(cmd.OutOrStdout(), profs)
		},
	}
}

func correctCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "correct TRACK.csv",
		Short: "Write the track with its drift removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := opts.runner(cmd, args[0])
			if err != nil {
				return err
			}
			track, err := trackio.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := runner.CorrectBeads(cmd.Context(), track); err != nil {
				return err
			}

			return write(cmd, output, track)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output CSV (- for stdout)")

	return cmd
}

func write(cmd *cobra.Command, path string, track map[int][][]float32) error {
	if path == "-" {
		return trackio.Write(cmd.OutOrStdout(), track)
	}

	return trackio.WriteFile(path, track)
}

// printProfiles writes one line per id: id,xmin,v0,v1,...
func printProfiles(w io.Writer, profs map[int]*collapse.Profile) error {
	ids := make([]int, 0, len(profs))
	for id := range profs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		p := profs[id]
		cells := make([]string, 0, p.Len()+2)
		cells = append(cells, strconv.Itoa(id), strconv.Itoa(p.XMin))
		for _, v := range p.Value {
			cells = append(cells, strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, ",")); err != nil {
			return err
		}
	}

	return nil
}
