package config

import (
	"encoding/json"
	"fmt"
	"os"

	"winsome/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Fields absent
// from the file keep their current values in the runtime Config.
type JsonConfig struct {
	ServerAddr    *string `json:"server_addr"`
	CallbackAddr  *string `json:"callback_addr"`
	MulticastAddr *string `json:"multicast_addr"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) error {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if jc.ServerAddr != nil {
		cfg.ServerAddr = *jc.ServerAddr
	}
	if jc.CallbackAddr != nil {
		cfg.CallbackAddr = *jc.CallbackAddr
	}
	if jc.MulticastAddr != nil {
		cfg.MulticastAddr = *jc.MulticastAddr
	}
	return nil
}
