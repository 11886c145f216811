package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orbitlab/cdrasim/cdra"
	"github.com/orbitlab/cdrasim/datarecording"
)

// parseOptionalWindow parses "start:end" into a half-open tick window. An
// empty string means the window is absent.
func parseOptionalWindow(spec string) (*cdra.Window, error) {
	if spec == "" {
		return nil, nil
	}

	parts := strings.Split(spec, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf(
			"invalid window %q, expected start:end", spec)
	}

	start, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid window start %q: %w", parts[0], err)
	}

	end, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid window end %q: %w", parts[1], err)
	}

	return &cdra.Window{Start: start, End: end}, nil
}

// parseHeaterFailure parses "Heater1,Heater2[@start:end]". Without a window
// the heaters are failed for the whole run.
func parseHeaterFailure(spec string) (cdra.HeaterFailure, error) {
	hf := cdra.HeaterFailure{}

	namesPart := spec
	if at := strings.Index(spec, "@"); at >= 0 {
		namesPart = spec[:at]

		window, err := parseOptionalWindow(spec[at+1:])
		if err != nil {
			return hf, err
		}
		hf.Window = window
	}

	for _, name := range strings.Split(namesPart, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		hf.Heaters = append(hf.Heaters, name)
	}

	if len(hf.Heaters) == 0 {
		return hf, fmt.Errorf("heater failure %q names no heaters", spec)
	}

	return hf, nil
}

// parseClickHouse parses "host:port/database".
func parseClickHouse(spec string) (datarecording.ClickHouseConfig, error) {
	cfg := datarecording.ClickHouseConfig{}

	hostPort, database, found := strings.Cut(spec, "/")
	if !found || database == "" {
		return cfg, fmt.Errorf(
			"invalid clickhouse target %q, expected host:port/database", spec)
	}

	host, portStr, found := strings.Cut(hostPort, ":")
	if !found || host == "" {
		return cfg, fmt.Errorf(
			"invalid clickhouse target %q, expected host:port/database", spec)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return cfg, fmt.Errorf("invalid clickhouse port %q: %w", portStr, err)
	}

	cfg.Host = host
	cfg.Port = port
	cfg.Database = database

	return cfg, nil
}
