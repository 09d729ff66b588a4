package audidesk

import (
	"sort"
	"testing"
)

func TestRouteMapFromConfigs_UserWins(t *testing.T) {
	m := routeMapFromConfigs(
		map[string][]string{"spotify": {"capture"}},
		map[string][]string{"spotify": {"master"}, "zoom": {"monitor"}},
	)

	targets, ok := m.get("spotify")
	if !ok {
		t.Fatal("expected a route entry for spotify")
	}

	if len(targets) != 1 || targets[0] != "capture" {
		t.Errorf("spotify targets = %v, want [capture]", targets)
	}

	if _, ok := m.get("zoom"); !ok {
		t.Error("internal-only entry for zoom should survive the merge")
	}
}

func TestRouteMapSet_CleansTargets(t *testing.T) {
	m := newRouteMap()
	m.set("Spotify", []string{" Master ", "MASTER", "", "AudiDesk_UID_2"})

	targets, ok := m.get("spotify")
	if !ok {
		t.Fatal("expected a route entry for spotify")
	}

	// built-ins are lowercased and deduplicated, device UIDs keep their case
	if len(targets) != 2 || targets[0] != "master" || targets[1] != "AudiDesk_UID_2" {
		t.Errorf("targets = %v, want [master AudiDesk_UID_2]", targets)
	}
}

func TestRouteMapApps(t *testing.T) {
	m := newRouteMap()
	m.set("Alpha", []string{"master"})
	m.set("beta", []string{"capture"})

	apps := m.apps()
	sort.Strings(apps)

	if len(apps) != 2 || apps[0] != "alpha" || apps[1] != "beta" {
		t.Errorf("apps = %v", apps)
	}
}

func TestRouteMapIterate(t *testing.T) {
	m := newRouteMap()
	m.set("alpha", []string{"master"})
	m.set("beta", []string{"capture", "monitor"})

	visited := map[string]int{}
	m.iterate(func(app string, targets []string) {
		visited[app] = len(targets)
	})

	if visited["alpha"] != 1 || visited["beta"] != 2 {
		t.Errorf("visited = %v", visited)
	}
}

func TestRouteMapString(t *testing.T) {
	m := newRouteMap()
	m.set("alpha", []string{"master"})

	if got := m.String(); got != "<1 routed apps>" {
		t.Errorf("String() = %q", got)
	}
}
