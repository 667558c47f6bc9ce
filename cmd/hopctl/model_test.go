package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hopmap/internal/config"
	"hopmap/internal/domain"
	"hopmap/internal/syncclient"
)

type backend struct {
	*httptest.Server
	mu     sync.Mutex
	bodies []domain.Snapshot
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var s domain.Snapshot
		json.NewDecoder(r.Body).Decode(&s)
		b.mu.Lock()
		b.bodies = append(b.bodies, s)
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":true,"status":"Specified configuration applied!"}`))
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) last() domain.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[len(b.bodies)-1]
}

func newTestModel(t *testing.T, endpoint string, afterFunc func(time.Duration, func())) model {
	t.Helper()
	topo, err := config.NewTopology(config.DefaultTopologySpec())
	require.NoError(t, err)

	client, err := syncclient.New(endpoint, syncclient.Config{Timeout: 5 * time.Second, AfterFunc: afterFunc})
	require.NoError(t, err)
	t.Cleanup(client.Wait)

	return newModel(topo, client, config.DefaultMinLoad, config.DefaultMaxLoad)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(model)
	}
	return m, cmd
}

func TestModelAdjustsLoadsWithinRange(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1/arccn/post/", nil)
	ab := domain.NewEdgeKey("A", "B")

	m, _ = press(t, m, "right", "right", "]")
	assert.Equal(t, domain.NewEdgeLoad(3, 2), m.currentConfiguration()[ab])

	m, _ = press(t, m, "left", "left", "left", "left", "[", "[")
	assert.Equal(t, domain.NewEdgeLoad(1, 1), m.currentConfiguration()[ab], "loads clamp at the minimum")

	m, _ = press(t, m, "down", "right")
	assert.Equal(t, domain.NewEdgeLoad(2, 3), m.currentConfiguration()[domain.NewEdgeKey("B", "C")])

	m, _ = press(t, m, "down", "down", "down")
	assert.Equal(t, 2, m.cursor, "cursor stops at the last edge")
}

func TestModelCurrentConfigurationIsACopy(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1/arccn/post/", nil)

	snap := m.currentConfiguration()
	snap[domain.NewEdgeKey("A", "B")] = domain.NewEdgeLoad(50, 50)

	assert.Equal(t, domain.NewEdgeLoad(1, 1), m.loads[domain.NewEdgeKey("A", "B")])
}

func TestModelApplyCycle(t *testing.T) {
	b := newBackend(t)

	var (
		mu     sync.Mutex
		timers []func()
	)
	after := func(d time.Duration, f func()) {
		mu.Lock()
		defer mu.Unlock()
		timers = append(timers, f)
	}

	m := newTestModel(t, b.URL+"/arccn/post/", after)
	m, _ = press(t, m, "right")

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Applying")

	next, _ := m.Update(cmd())
	m = next.(model)

	require.NotNil(t, m.last)
	assert.True(t, m.last.OK())
	assert.False(t, m.last.Quiet)
	assert.Equal(t, domain.NewEdgeLoad(2, 1), b.last()[domain.NewEdgeKey("A", "B")])

	assert.True(t, m.trigger.Done())
	assert.False(t, m.trigger.Clickable())
	assert.Contains(t, m.View(), "Applied")

	// clicks during cooldown do nothing
	_, cmd = press(t, m, "enter")
	assert.Nil(t, cmd)

	mu.Lock()
	require.Len(t, timers, 1)
	fire := timers[0]
	mu.Unlock()
	fire()

	assert.Equal(t, applyHandler, m.trigger.ClickHandler())
	assert.True(t, m.trigger.Clickable())
}

func TestModelInitSyncsQuietly(t *testing.T) {
	b := newBackend(t)
	m := newTestModel(t, b.URL+"/arccn/post/", nil)

	m.client.Wait()
	_ = m.Init()
	m.client.Wait()

	assert.Equal(t, config.DefaultTopologySpec().InitialLoads["B-C"], [2]int(b.last()[domain.NewEdgeKey("B", "C")]))
	assert.Equal(t, applyHandler, m.trigger.ClickHandler())
	assert.False(t, m.trigger.Done())
}

func TestModelView(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1/arccn/post/", nil)
	view := m.View()

	for _, want := range []string{"Moscow", "San Francisco", "Canberra", "A-B", "B-C", "C-A", "Apply"} {
		assert.True(t, strings.Contains(view, want), "view should contain %q", want)
	}
}

func TestPushInitial(t *testing.T) {
	b := newBackend(t)
	m := newTestModel(t, b.URL+"/arccn/post/", nil)

	assert.Equal(t, 0, pushInitial(m.client, m.topo))
	assert.Equal(t, m.topo.InitialLoads(), b.last())

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer failing.Close()
	bad := newTestModel(t, failing.URL+"/arccn/post/", nil)
	assert.Equal(t, 1, pushInitial(bad.client, bad.topo))
}

func TestWriteInitialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "hopmap.yaml")

	got, err := writeInitialConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cfg, _, err := config.LoadFromPath(path)
	require.NoError(t, err)
	_, err = config.NewTopology(cfg.Topology)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTopologySpec().Endpoint, cfg.Topology.Endpoint)

	_, err = writeInitialConfig(path)
	assert.Error(t, err, "existing config must not be replaced")
}

func TestWriteInitialConfigDefaultLocation(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	got, err := writeInitialConfig("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "hopmap", "config.yaml"), got)
	assert.FileExists(t, got)
}
