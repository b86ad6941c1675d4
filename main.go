package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nowplaying/cmd"
	"nowplaying/internal/audio"
	"nowplaying/internal/log"
	"nowplaying/internal/session"
	"nowplaying/internal/tui"
	"nowplaying/pkg/build"
)

// main drives the player in three phases:
//
// 1. Startup (cold path): stamp build information, parse the command
//    line into a validated configuration, raise the PortAudio host.
// 2. Playback (hot path): the output callback feeds the device while
//    the frame clock drives analysis and terminal rendering. The two
//    loops share only the immutable sample buffer and the atomic
//    cursor.
// 3. Shutdown (cold path): end of buffer, SIGINT or SIGTERM stops the
//    session; the stream and the PortAudio host are torn down on every
//    exit path.
func main() {
	build.Initialize()

	args, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if args.Command == "" {
		// Help or version output was already printed.
		return
	}

	cfg := args.Config
	if cfg.Debug {
		log.SetLevel(log.LevelDebug)
	} else if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown log level %q, using info", cfg.LogLevel)
	}

	if err := run(args); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(args *cmd.Args) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	switch args.Command {
	case cmd.CommandDevices:
		return runDevices(args.Interactive)

	case cmd.CommandPlay:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return session.New(args.Config, os.Stdout).Run(ctx, args.Path)
	}

	return fmt.Errorf("unknown command %q", args.Command)
}

// runDevices prints the device listing, or hands the terminal to the
// interactive browser and echoes the confirmed selection.
func runDevices(interactive bool) error {
	if !interactive {
		return audio.ListDevices()
	}

	chosen, err := tui.StartDeviceBrowser()
	if err != nil {
		return err
	}
	if chosen != tui.NoSelection {
		fmt.Printf("Output device %d selected. Play with: %s --device %d <file>\n",
			chosen, build.GetBuildFlags().Name, chosen)
	}
	return nil
}
