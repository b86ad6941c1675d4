package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nowplaying/internal/config"
	"nowplaying/pkg/build"
)

// Command names recorded by ParseArgs for main to dispatch on.
const (
	CommandPlay    = "play"
	CommandDevices = "devices"
)

// Args is the parsed command line: the action to take plus the fully
// resolved configuration. Precedence, lowest to highest: built-in
// defaults, YAML config file, NOWPLAYING_* environment variables,
// explicit flags.
type Args struct {
	Command     string
	Path        string // file to play when Command is CommandPlay
	Interactive bool   // devices: open the interactive browser
	Config      *config.Config
}

// ParseArgs builds the CLI and runs it against os.Args. An empty
// Command on a nil error means cobra already handled the invocation
// (help or version output).
func ParseArgs() (*Args, error) {
	return parseArgs(os.Args[1:])
}

func parseArgs(argv []string) (*Args, error) {
	buildInfo := build.GetBuildFlags()

	// Flag values land in a default-initialized config; only flags the
	// user actually set are copied over the loaded configuration.
	overrides := config.NewConfig()
	args := &Args{}

	var configPath string

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name + " [flags] <file>",
		Short:         "Terminal audio player with a synchronized visualization",
		Version:       buildInfo.Version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			cfg, err := resolveConfig(cmd, configPath, overrides)
			if err != nil {
				return err
			}
			args.Command = CommandPlay
			args.Path = posArgs[0]
			args.Config = cfg
			return nil
		},
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s\n", buildInfo))
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List audio devices and their output capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, configPath, overrides)
			if err != nil {
				return err
			}
			args.Command = CommandDevices
			args.Config = cfg
			return nil
		},
	}
	devicesCmd.Flags().BoolVarP(&args.Interactive, "interactive", "i", false,
		"Pick the output device in an interactive browser")
	rootCmd.AddCommand(devicesCmd)

	// Playback configuration
	rootCmd.PersistentFlags().IntVarP(&overrides.Playback.OutputDevice, "device", "d", config.DefaultOutputDevice,
		"Output device ID. Use the 'devices' command to see what is available.")
	rootCmd.PersistentFlags().Float64VarP(&overrides.Playback.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Decode and playback rate in Hz (0 keeps the file's native rate)")
	rootCmd.PersistentFlags().IntVarP(&overrides.Playback.BlockSize, "block-size", "b", config.DefaultBlockSize,
		"Frames per output callback (power of two)")
	rootCmd.PersistentFlags().BoolVarP(&overrides.Playback.LowLatency, "low-latency", "l", false,
		"Request the device's low latency settings")
	rootCmd.PersistentFlags().StringVar(&overrides.Playback.DumpWAV, "dump-wav", "",
		"Export the decoded buffer to this WAV path before playback")

	// Render configuration
	rootCmd.PersistentFlags().StringVarP(&overrides.Render.Mode, "mode", "m", config.DefaultMode,
		"Visualization mode: spectrum or waveform")
	rootCmd.PersistentFlags().StringVarP(&overrides.Render.Rate, "rate", "f", config.DefaultRate,
		"Frame rate: slow, normal, fast or a numeric fps")
	rootCmd.PersistentFlags().IntVar(&overrides.Render.Width, "width", config.DefaultWidth,
		"Bars across the terminal")
	rootCmd.PersistentFlags().IntVar(&overrides.Render.Height, "height", config.DefaultHeight,
		"Rows per bar column")
	rootCmd.PersistentFlags().IntSliceVar(&overrides.Render.Colors, "colors", nil,
		"At least 2 ANSI-256 color codes, bottom to top")

	// Analysis configuration
	rootCmd.PersistentFlags().Float64Var(&overrides.Analysis.WindowSeconds, "window", config.DefaultWindowSeconds,
		"Analysis window in seconds")
	rootCmd.PersistentFlags().Float64Var(&overrides.Analysis.FloorDb, "floor-db", config.DefaultFloorDb,
		"dB level rendered as an empty bar")
	rootCmd.PersistentFlags().Float64Var(&overrides.Analysis.FMin, "fmin", config.DefaultFMin,
		"Lowest spectrum band edge in Hz")
	rootCmd.PersistentFlags().StringVar(&overrides.Analysis.Window, "window-func", config.DefaultWindow,
		"Window function for spectrum analysis (hann, hamming, blackman, ...)")

	// Debug configuration
	rootCmd.PersistentFlags().BoolVarP(&overrides.Debug, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVar(&overrides.LogLevel, "log-level", "info",
		"Logging level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file")

	rootCmd.SetArgs(argv)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return args, nil
}

// resolveConfig loads the file and environment configuration, copies
// every explicitly set flag over it and validates the result.
func resolveConfig(cmd *cobra.Command, configPath string, overrides *config.Config) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Playback.OutputDevice = overrides.Playback.OutputDevice
	}
	if flags.Changed("sample-rate") {
		cfg.Playback.SampleRate = overrides.Playback.SampleRate
	}
	if flags.Changed("block-size") {
		cfg.Playback.BlockSize = overrides.Playback.BlockSize
	}
	if flags.Changed("low-latency") {
		cfg.Playback.LowLatency = overrides.Playback.LowLatency
	}
	if flags.Changed("dump-wav") {
		cfg.Playback.DumpWAV = overrides.Playback.DumpWAV
	}
	if flags.Changed("mode") {
		cfg.Render.Mode = overrides.Render.Mode
	}
	if flags.Changed("rate") {
		cfg.Render.Rate = overrides.Render.Rate
	}
	if flags.Changed("width") {
		cfg.Render.Width = overrides.Render.Width
	}
	if flags.Changed("height") {
		cfg.Render.Height = overrides.Render.Height
	}
	if flags.Changed("colors") {
		cfg.Render.Colors = overrides.Render.Colors
	}
	if flags.Changed("window") {
		cfg.Analysis.WindowSeconds = overrides.Analysis.WindowSeconds
	}
	if flags.Changed("floor-db") {
		cfg.Analysis.FloorDb = overrides.Analysis.FloorDb
	}
	if flags.Changed("fmin") {
		cfg.Analysis.FMin = overrides.Analysis.FMin
	}
	if flags.Changed("window-func") {
		cfg.Analysis.Window = overrides.Analysis.Window
	}
	if flags.Changed("verbose") {
		cfg.Debug = overrides.Debug
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = overrides.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
