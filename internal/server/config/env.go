package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from WINSOME_* environment variables. A
// .env file in the working directory is loaded first; already-set process
// variables win over the file, and a missing file is not an error.
func parseEnv(config *Config) error {
	_ = godotenv.Load()

	lookupString("WINSOME_ADDR", &config.EndpointAddr)
	lookupString("WINSOME_CALLBACK_ADDR", &config.CallbackAddr)
	lookupString("WINSOME_MULTICAST_ADDR", &config.MulticastAddr)
	lookupString("WINSOME_SNAPSHOT_PATH", &config.SnapshotPath)
	lookupString("WINSOME_CURRENCY_SINGULAR", &config.CurrencySingular)
	lookupString("WINSOME_CURRENCY_PLURAL", &config.CurrencyPlural)

	if err := lookupDuration("WINSOME_REWARD_INTERVAL", &config.RewardInterval); err != nil {
		return err
	}
	if err := lookupDuration("WINSOME_SNAPSHOT_INTERVAL", &config.SnapshotInterval); err != nil {
		return err
	}

	for _, v := range []struct {
		name   string
		target *int
	}{
		{"WINSOME_AUTHOR_PERCENT", &config.AuthorPercent},
		{"WINSOME_CURATOR_PERCENT", &config.CuratorPercent},
		{"WINSOME_TITLE_MAX_LEN", &config.TitleMaxLen},
		{"WINSOME_CONTENT_MAX_LEN", &config.ContentMaxLen},
		{"WINSOME_MAX_TAGS", &config.MaxTags},
		{"WINSOME_CURRENCY_DECIMALS", &config.CurrencyDecimals},
	} {
		if err := lookupInt(v.name, v.target); err != nil {
			return err
		}
	}
	return nil
}

func lookupString(name string, target *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*target = v
	}
}

func lookupInt(name string, target *int) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*target = n
	return nil
}

func lookupDuration(name string, target *time.Duration) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*target = d
	return nil
}
