// Package audidesk wires the AudiDesk virtual audio device into a desktop
// daemon: it loads user configuration, applies it to the device's controls,
// drives the loopback cycle engine and exposes runtime counters
package audidesk

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/capture"
	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/driver"
	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/host"
	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/util"
)

// AudiDesk is the main object. It orchestrates the virtual device, the cycle
// engine and the config manager, and owns the daemon's lifecycle
type AudiDesk struct {
	logger   *zap.SugaredLogger
	notifier Notifier
	config   *ConfigManager
	device   *driver.Driver
	engine   *host.Engine
	metrics  *MetricsServer

	stopChannel  chan bool
	engineCancel context.CancelFunc
	engineDone   chan struct{}

	version string
	verbose bool
}

// New creates an AudiDesk instance, using a provided logger
func New(logger *zap.SugaredLogger, verbose bool) (*AudiDesk, error) {
	logger = logger.Named("audidesk")

	notifier, err := NewToastNotifier(logger)
	if err != nil {
		logger.Errorw("Failed to create toast notifier", "error", err)
		return nil, fmt.Errorf("create toast notifier: %w", err)
	}

	config, err := NewConfig(logger, notifier)
	if err != nil {
		logger.Errorw("Failed to create config manager", "error", err)
		return nil, fmt.Errorf("create config manager: %w", err)
	}

	a := &AudiDesk{
		logger:      logger,
		notifier:    notifier,
		config:      config,
		stopChannel: make(chan bool),
		verbose:     verbose,
	}

	logger.Debug("Created audidesk instance")

	return a, nil
}

// Initialize sets up the daemon components and starts the main run loop
func (a *AudiDesk) Initialize() error {
	a.logger.Debug("Initializing audidesk")

	// since config initialization is blocking, do it before anything else
	if err := a.config.Load(); err != nil {
		a.logger.Errorw("Failed to load config during initialization", "error", err)
		return fmt.Errorf("load config during init: %w", err)
	}

	conf := a.config.current

	device, err := driver.New(a.logger, driver.Options{Name: conf.DeviceName})
	if err != nil {
		a.logger.Errorw("Failed to create virtual device", "error", err)
		return fmt.Errorf("create virtual device: %w", err)
	}

	a.device = device
	a.applyControlConfig()

	sinks, err := a.buildSinks()
	if err != nil {
		a.logger.Errorw("Failed to build audio sinks", "error", err)
		return fmt.Errorf("build audio sinks: %w", err)
	}

	engine, err := host.NewEngine(a.logger, device, nil, sinks...)
	if err != nil {
		a.logger.Errorw("Failed to create cycle engine", "error", err)
		return fmt.Errorf("create cycle engine: %w", err)
	}

	a.engine = engine

	if conf.MetricsAddress != "" {
		metrics, err := NewMetricsServer(a.logger, device, conf.MetricsAddress)
		if err != nil {
			a.logger.Errorw("Failed to create metrics server", "error", err)
			return fmt.Errorf("create metrics server: %w", err)
		}

		a.metrics = metrics
	}

	a.setupOnConfigReload()
	a.setupInterruptHandler()
	a.run()

	return nil
}

// SetVersion causes audidesk to add a version string to its logs
func (a *AudiDesk) SetVersion(version string) {
	a.version = version
}

// Verbose returns whether the daemon is running in verbose mode
func (a *AudiDesk) Verbose() bool {
	return a.verbose
}

// Device returns the underlying virtual device object
func (a *AudiDesk) Device() *driver.Driver {
	return a.device
}

func (a *AudiDesk) buildSinks() ([]host.Sink, error) {
	conf := a.config.current
	sinks := []host.Sink{}

	if conf.CaptureParams.Enabled {
		capturePath := conf.CaptureParams.Path
		if capturePath == "" {
			capturePath = defaultCapturePath
		}

		wavSink, err := capture.NewWAVSink(a.logger, capturePath)
		if err != nil {
			return nil, fmt.Errorf("create wav capture sink: %w", err)
		}

		sinks = append(sinks, wavSink)
	}

	if conf.MonitorOutput {
		monitorSink, err := host.NewMonitorSink(a.logger)
		if err != nil {
			// monitoring is best-effort, some machines have no playback device at all
			a.logger.Warnw("Failed to create monitor sink, continuing without it", "error", err)
		} else {
			sinks = append(sinks, monitorSink)
		}
	}

	return sinks, nil
}

// applyControlConfig pushes the configured volume and mute state onto the
// device through its property interface, same as a host client would
func (a *AudiDesk) applyControlConfig() {
	conf := a.config.current

	volume := util.NormalizeScalar(conf.InitialVolume)
	if err := a.device.SetPropertyData(driver.ObjectVolumeControl,
		driver.Address{Selector: driver.SelectorVolumeScalar, Scope: driver.ScopeGlobal, Element: driver.ElementMain},
		volume); err != nil {
		a.logger.Warnw("Failed to apply configured volume", "error", err, "volume", volume)
	}

	if err := a.device.SetPropertyData(driver.ObjectMuteControl,
		driver.Address{Selector: driver.SelectorMuteState, Scope: driver.ScopeGlobal, Element: driver.ElementMain},
		conf.StartMuted); err != nil {
		a.logger.Warnw("Failed to apply configured mute state", "error", err, "muted", conf.StartMuted)
	}

	conf.RouteMapping.validate(a.logger)
}

func (a *AudiDesk) setupOnConfigReload() {
	configReloadedChannel := a.config.SubscribeToChanges()

	go func() {
		for range configReloadedChannel {
			a.logger.Debug("Config reloaded, re-applying control settings")
			a.applyControlConfig()
		}
	}()
}

func (a *AudiDesk) setupInterruptHandler() {
	interruptChannel := util.SetupCloseHandler()

	go func() {
		signal := <-interruptChannel
		a.logger.Warnw("Interrupted", "signal", signal)
		a.signalStop()
	}()
}

func (a *AudiDesk) run() {
	a.logger.Info("Run loop starting")

	if a.version != "" {
		a.logger.Infow("Running version", "version", a.version)
	}

	// watch the config file for changes
	go a.config.WatchConfigFileChanges()

	if a.metrics != nil {
		go func() {
			if err := a.metrics.Serve(); err != nil {
				a.logger.Warnw("Metrics server stopped with error", "error", err)
			}
		}()
	}

	engineContext, engineCancel := context.WithCancel(context.Background())
	a.engineCancel = engineCancel
	a.engineDone = make(chan struct{})

	go func() {
		defer a.recoverFromPanic()
		defer close(a.engineDone)

		if err := a.engine.Run(engineContext); err != nil {
			a.logger.Warnw("Cycle engine stopped with error", "error", err)
			a.signalStop()
		}
	}()

	// wait until stopped (gracefully)
	<-a.stopChannel
	a.logger.Debug("Stop channel signaled, terminating")

	if err := a.stop(); err != nil {
		a.logger.Warnw("Failed to stop audidesk", "error", err)
	} else {
		// exit with 0
		a.logger.Info("Stopped")
	}
}

func (a *AudiDesk) stop() error {
	a.logger.Info("Stopping")

	if a.engineCancel != nil {
		a.engineCancel()
		<-a.engineDone
	}

	a.config.StopWatchingConfigFile()

	if a.metrics != nil {
		a.metrics.Close()
	}

	// release the logger's resources very last
	_ = a.logger.Sync()

	return nil
}

func (a *AudiDesk) signalStop() {
	a.stopChannel <- true
}
