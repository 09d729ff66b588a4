package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chellaprabu21/AudiDesk/pkg/audidesk"
	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/capture"
	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/driver"
	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/host"
)

var (
	gitCommit  string
	versionTag string
	buildType  string

	verbose bool
)

func main() {
	rootCommand := &cobra.Command{
		Use:          "audidesk",
		Short:        "Virtual audio output device and loopback daemon",
		SilenceUsage: true,
	}

	rootCommand.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show verbose logs")

	rootCommand.AddCommand(newRunCommand())
	rootCommand.AddCommand(newInstallCommand())
	rootCommand.AddCommand(newUninstallCommand())
	rootCommand.AddCommand(newDemoCommand())

	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.SugaredLogger, error) {
	logger, err := audidesk.NewLogger(buildType)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return logger, nil
}

func versionString() string {
	if buildType == "" || (versionTag == "" && gitCommit == "") {
		return ""
	}

	identifier := gitCommit
	if versionTag != "" {
		identifier = versionTag
	}

	return fmt.Sprintf("Version %s-%s", buildType, identifier)
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the loopback daemon with the local config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			named := logger.Named("main")
			named.Infow("Version info",
				"gitCommit", gitCommit,
				"versionTag", versionTag,
				"buildType", buildType)

			if verbose {
				named.Debug("Verbose flag provided, all log messages will be shown")
			}

			a, err := audidesk.New(logger, verbose)
			if err != nil {
				named.Errorw("Failed to create audidesk object", "error", err)
				return err
			}

			if version := versionString(); version != "" {
				a.SetVersion(version)
			}

			if err := a.Initialize(); err != nil {
				named.Errorw("Failed to initialize audidesk", "error", err)
				return err
			}

			return nil
		},
	}
}

func newInstallCommand() *cobra.Command {
	var (
		bundlePath      string
		pluginDirectory string
		restartHost     bool
	)

	command := &cobra.Command{
		Use:   "install",
		Short: "Install the driver bundle into the host's plugin directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			return audidesk.Install(logger, bundlePath, pluginDirectory, restartHost)
		},
	}

	command.Flags().StringVar(&bundlePath, "bundle", audidesk.DefaultBundleName, "path of the driver bundle to install")
	command.Flags().StringVar(&pluginDirectory, "plugin-dir", audidesk.DefaultPluginDirectory, "plugin directory to install into")
	command.Flags().BoolVar(&restartHost, "restart-host", true, "restart the host audio server after installing")

	return command
}

func newUninstallCommand() *cobra.Command {
	var (
		bundleName      string
		pluginDirectory string
		restartHost     bool
	)

	command := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the installed driver bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			return audidesk.Uninstall(logger, bundleName, pluginDirectory, restartHost)
		},
	}

	command.Flags().StringVar(&bundleName, "bundle", audidesk.DefaultBundleName, "name of the installed driver bundle")
	command.Flags().StringVar(&pluginDirectory, "plugin-dir", audidesk.DefaultPluginDirectory, "plugin directory to remove from")
	command.Flags().BoolVar(&restartHost, "restart-host", true, "restart the host audio server after removing")

	return command
}

func newDemoCommand() *cobra.Command {
	var (
		duration  time.Duration
		frequency float64
		volume    float32
		outPath   string
		monitor   bool
	)

	command := &cobra.Command{
		Use:   "demo",
		Short: "Run a test tone through the virtual device for a while",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			named := logger.Named("demo")

			device, err := driver.New(logger, driver.Options{})
			if err != nil {
				return fmt.Errorf("create virtual device: %w", err)
			}

			if err := device.SetPropertyData(driver.ObjectVolumeControl,
				driver.Address{Selector: driver.SelectorVolumeScalar, Scope: driver.ScopeGlobal, Element: driver.ElementMain},
				volume); err != nil {
				return fmt.Errorf("set demo volume: %w", err)
			}

			sinks := []host.Sink{}

			if outPath != "" {
				wavSink, err := capture.NewWAVSink(logger, outPath)
				if err != nil {
					return fmt.Errorf("create wav sink: %w", err)
				}

				sinks = append(sinks, wavSink)
			}

			if monitor {
				monitorSink, err := host.NewMonitorSink(logger)
				if err != nil {
					named.Warnw("Failed to create monitor sink, continuing without it", "error", err)
				} else {
					sinks = append(sinks, monitorSink)
				}
			}

			engine, err := host.NewEngine(logger, device, host.NewSineSource(frequency, 0.5), sinks...)
			if err != nil {
				return fmt.Errorf("create cycle engine: %w", err)
			}

			named.Infow("Running demo tone",
				"duration", duration,
				"frequency", frequency,
				"volume", volume,
				"outPath", outPath)

			ctx, cancel := context.WithTimeout(context.Background(), duration)
			defer cancel()

			if err := engine.Run(ctx); err != nil {
				return fmt.Errorf("run cycle engine: %w", err)
			}

			named.Infow("Demo finished",
				"droppedFrames", device.DroppedFrames(),
				"silentFrames", device.SilentFrames())

			return nil
		},
	}

	command.Flags().DurationVar(&duration, "duration", time.Second*5, "how long to run the tone for")
	command.Flags().Float64Var(&frequency, "freq", 440, "tone frequency in Hz")
	command.Flags().Float32Var(&volume, "volume", 1.0, "device volume scalar between 0 and 1")
	command.Flags().StringVar(&outPath, "out", "", "write the looped-back audio to this WAV file")
	command.Flags().BoolVar(&monitor, "monitor", false, "play the looped-back audio on the default output")

	return command
}
