package audidesk

import (
	"fmt"
	"strings"
	"sync"

	"github.com/thoas/go-funk"
	"go.uber.org/zap"
)

// built-in route targets the daemon knows how to drive directly.
// anything else is treated as the UID of another output device
const (
	routeTargetMaster  = "master"
	routeTargetCapture = "capture"
	routeTargetMonitor = "monitor"
)

var builtinRouteTargets = []string{routeTargetMaster, routeTargetCapture, routeTargetMonitor}

// routeMap maps application names (lowercase) to the targets their audio
// should be delivered to
type routeMap struct {
	m    map[string][]string
	lock sync.Locker
}

func newRouteMap() *routeMap {
	return &routeMap{
		m:    make(map[string][]string),
		lock: &sync.Mutex{},
	}
}

// routeMapFromConfigs merges the user-provided and internal route mappings
// into one map. User entries take precedence over internal ones for the same app
func routeMapFromConfigs(userMapping map[string][]string, internalMapping map[string][]string) *routeMap {
	resultMap := newRouteMap()

	for app, targets := range internalMapping {
		resultMap.set(app, targets)
	}

	for app, targets := range userMapping {
		resultMap.set(app, targets)
	}

	return resultMap
}

func (m *routeMap) set(app string, targets []string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	cleaned := make([]string, 0, len(targets))

	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}

		// built-in targets are case-insensitive, device UIDs aren't
		if funk.ContainsString(builtinRouteTargets, strings.ToLower(target)) {
			target = strings.ToLower(target)
		}

		cleaned = append(cleaned, target)
	}

	m.m[strings.ToLower(app)] = funk.UniqString(cleaned)
}

func (m *routeMap) get(app string) ([]string, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	targets, ok := m.m[strings.ToLower(app)]

	return targets, ok
}

func (m *routeMap) iterate(f func(app string, targets []string)) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for app, targets := range m.m {
		f(app, targets)
	}
}

func (m *routeMap) apps() []string {
	m.lock.Lock()
	defer m.lock.Unlock()

	apps := make([]string, 0, len(m.m))
	for app := range m.m {
		apps = append(apps, app)
	}

	return apps
}

// validate logs route entries that look suspicious, so users can spot typos
// in their config without the daemon refusing to start
func (m *routeMap) validate(logger *zap.SugaredLogger) {
	m.iterate(func(app string, targets []string) {
		if len(targets) == 0 {
			logger.Warnw("Route entry has no targets", "app", app)
			return
		}

		for _, target := range targets {
			if !funk.ContainsString(builtinRouteTargets, target) {
				logger.Debugw("Route entry targets a device UID", "app", app, "target", target)
			}
		}
	})
}

func (m *routeMap) String() string {
	m.lock.Lock()
	defer m.lock.Unlock()

	return fmt.Sprintf("<%d routed apps>", len(m.m))
}
