package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"hopmap/internal/codec"
	"hopmap/internal/config"
	"hopmap/internal/syncclient"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default: search HOPMAP_CONFIG and standard locations)")
	baseURL := flag.String("base-url", "", "Backend base URL (overrides sync.base_url)")
	topologyPath := flag.String("topology", "", "JSON or YAML topology file (overrides the config's topology)")
	push := flag.Bool("push", false, "Quietly submit the initial loads and exit")
	initConfig := flag.Bool("init", false, "Write the reference config to -config (or the default location) and exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if *initConfig {
		path, err := writeInitialConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
		return
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, _, err = config.LoadFromPath(*configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *baseURL != "" {
		cfg.Sync.BaseURL = *baseURL
	}
	if *topologyPath != "" {
		spec, err := codec.LoadFile(*topologyPath)
		if err != nil {
			log.Fatalf("Failed to load topology: %v", err)
		}
		cfg.Topology = *spec
	}

	topo, err := config.NewTopology(cfg.Topology)
	if err != nil {
		log.Fatalf("Invalid topology: %v", err)
	}

	endpoint, err := topo.ResolveEndpoint(cfg.Sync.BaseURL)
	if err != nil {
		log.Fatalf("Failed to resolve endpoint: %v", err)
	}

	client, err := syncclient.New(endpoint, syncclient.Config{
		Timeout:  cfg.Sync.Timeout.Duration(),
		Cooldown: cfg.Sync.Cooldown.Duration(),
	})
	if err != nil {
		log.Fatalf("Failed to create sync client: %v", err)
	}

	if *push {
		os.Exit(pushInitial(client, topo))
	}

	// The TUI owns the terminal; keep log output out of it
	if f, err := tea.LogToFile(os.DevNull, ""); err == nil {
		defer f.Close()
	}

	m := newModel(topo, client, cfg.Server.MinLoad, cfg.Server.MaxLoad)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running hopctl: %v\n", err)
		os.Exit(1)
	}
}

// pushInitial sends the topology's initial loads without touching any
// trigger and returns the process exit code
func pushInitial(client *syncclient.Client, topo *config.Topology) int {
	sub, err := client.Submit(topo.InitialLoads(), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to submit: %v\n", err)
		return 1
	}

	res := sub.Result()
	if !res.OK() {
		fmt.Fprintf(os.Stderr, "Push to %s failed (%s): %v\n", client.Endpoint(), res.Outcome, res.Err)
		return 1
	}

	status := "ok"
	if res.Reply != nil {
		status = res.Reply.Status
	}
	fmt.Printf("%s: %s\n", client.Endpoint(), status)
	return 0
}

// writeInitialConfig saves the reference config to path, or to the default
// per-user location when path is empty. An existing file is never replaced.
func writeInitialConfig(path string) (string, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return "", err
	}
	return path, nil
}
