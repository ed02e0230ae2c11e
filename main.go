package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/kapitanov/chip8vm/internal/hal"
	"github.com/kapitanov/chip8vm/internal/hal/window"
	"github.com/kapitanov/chip8vm/internal/rom"
	"github.com/kapitanov/chip8vm/internal/vm"
	"github.com/spf13/cobra"
)

// host is a vm.HAL that owns resources to release on exit.
type host interface {
	vm.HAL
	Shutdown()
}

func main() {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run a CHIP-8 program",
		Long:          "Run a CHIP-8 program. The ROM may be raw bytecode or a .zip, .gz or .7z archive holding it.",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	verbose := cmd.Flags().BoolP("verbose", "v", false, "enable verbose logging")
	hz := cmd.Flags().Int("hz", hal.DefaultHz, "cycles per second")
	term := cmd.Flags().Bool("term", false, "render in the terminal instead of a window")
	seed := cmd.Flags().Uint64("seed", 0, "seed for the random number instruction (0 picks one)")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		loggerOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		if *verbose {
			loggerOpts.Level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))

		if *hz <= 0 {
			return fmt.Errorf("invalid --hz %d: must be positive", *hz)
		}

		path := args[0]
		program, err := rom.Load(path)
		if err != nil {
			return fmt.Errorf("unable to load file %q: %w", path, err)
		}
		slog.Info("rom loaded", "path", path, "size", len(program), "xxhash", rom.Fingerprint(program))

		var opts []vm.Option
		if *seed != 0 {
			opts = append(opts, vm.WithRandSource(rand.NewPCG(*seed, *seed)))
		}
		machine := vm.New(opts...)

		// Reject programs that cannot fit before opening a window.
		if err := machine.Load(program); err != nil {
			return err
		}

		h, err := newHost(hal.Config{Hz: *hz}, *term)
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		for {
			err = machine.Run(h)

			if errors.Is(err, hal.ErrQuit) {
				return nil
			}

			if errors.Is(err, hal.ErrReboot) {
				slog.Info("reboot")
				if err := machine.Load(program); err != nil {
					return err
				}
				continue
			}

			return err
		}
	}

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func newHost(cfg hal.Config, term bool) (host, error) {
	if term {
		return hal.NewTerminal(cfg)
	}
	return window.New(cfg)
}
