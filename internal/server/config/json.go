package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"winsome/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. Interval fields are duration strings ("10s", "1m30s").
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, the fields that were present
// are copied into the runtime Config struct.
type JsonConfig struct {
	EndpointAddr     *string `json:"endpoint_addr"`
	CallbackAddr     *string `json:"callback_addr"`
	MulticastAddr    *string `json:"multicast_addr"`
	RewardInterval   *string `json:"reward_interval"`
	AuthorPercent    *int    `json:"author_percent"`
	CuratorPercent   *int    `json:"curator_percent"`
	SnapshotPath     *string `json:"snapshot_path"`
	SnapshotInterval *string `json:"snapshot_interval"`
	TitleMaxLen      *int    `json:"title_max_len"`
	ContentMaxLen    *int    `json:"content_max_len"`
	MaxTags          *int    `json:"max_tags"`
	CurrencySingular *string `json:"currency_singular"`
	CurrencyPlural   *string `json:"currency_plural"`
	CurrencyDecimals *int    `json:"currency_decimals"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. Fields absent from the file keep
// their current values.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.CallbackAddr, c.CallbackAddr)
	setString(&config.MulticastAddr, c.MulticastAddr)
	setString(&config.SnapshotPath, c.SnapshotPath)
	setString(&config.CurrencySingular, c.CurrencySingular)
	setString(&config.CurrencyPlural, c.CurrencyPlural)
	setInt(&config.AuthorPercent, c.AuthorPercent)
	setInt(&config.CuratorPercent, c.CuratorPercent)
	setInt(&config.TitleMaxLen, c.TitleMaxLen)
	setInt(&config.ContentMaxLen, c.ContentMaxLen)
	setInt(&config.MaxTags, c.MaxTags)
	setInt(&config.CurrencyDecimals, c.CurrencyDecimals)

	if err := setDuration(&config.RewardInterval, c.RewardInterval); err != nil {
		return fmt.Errorf("reward_interval: %w", err)
	}
	if err := setDuration(&config.SnapshotInterval, c.SnapshotInterval); err != nil {
		return fmt.Errorf("snapshot_interval: %w", err)
	}
	return nil
}

func setString(target *string, v *string) {
	if v != nil {
		*target = *v
	}
}

func setInt(target *int, v *int) {
	if v != nil {
		*target = *v
	}
}

func setDuration(target *time.Duration, v *string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return err
	}
	*target = d
	return nil
}
