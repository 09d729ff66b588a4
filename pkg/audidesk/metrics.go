package audidesk

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chellaprabu21/AudiDesk/pkg/audidesk/driver"
)

// MetricsServer exposes the virtual device's IO counters over HTTP in
// Prometheus exposition format
type MetricsServer struct {
	logger *zap.SugaredLogger
	server *http.Server
}

// NewMetricsServer creates a metrics server bound to the given address,
// reading counters straight off the device
func NewMetricsServer(logger *zap.SugaredLogger, device *driver.Driver, address string) (*MetricsServer, error) {
	logger = logger.Named("metrics")

	registry := prometheus.NewRegistry()

	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "audidesk",
			Subsystem: "io",
			Name:      "dropped_frames_total",
			Help:      "Frames discarded on write because the ring buffer was full.",
		}, func() float64 {
			return float64(device.DroppedFrames())
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "audidesk",
			Subsystem: "io",
			Name:      "silent_frames_total",
			Help:      "Frames zero-filled on read because the ring buffer was empty.",
		}, func() float64 {
			return float64(device.SilentFrames())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "audidesk",
			Subsystem: "io",
			Name:      "running",
			Help:      "Whether an IO session is currently active.",
		}, func() float64 {
			if device.Running() {
				return 1
			}
			return 0
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "audidesk",
			Subsystem: "io",
			Name:      "clients",
			Help:      "Number of clients with an active IO session.",
		}, func() float64 {
			return float64(device.ClientCount())
		}),
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register metrics collector: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	ms := &MetricsServer{
		logger: logger,
		server: &http.Server{
			Addr:              address,
			Handler:           mux,
			ReadHeaderTimeout: time.Second * 5,
		},
	}

	logger.Debugw("Created metrics server instance", "address", address)

	return ms, nil
}

// Serve blocks, serving the metrics endpoint until Close is called
func (ms *MetricsServer) Serve() error {
	ms.logger.Infow("Serving metrics", "address", ms.server.Addr)

	if err := ms.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics endpoint: %w", err)
	}

	return nil
}

// Close shuts the metrics server down
func (ms *MetricsServer) Close() {
	ms.logger.Debug("Closing metrics server")

	if err := ms.server.Close(); err != nil {
		ms.logger.Warnw("Failed to close metrics server", "error", err)
	}
}
