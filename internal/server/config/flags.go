package config

import (
	"flag"
	"os"

	"winsome/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     main TCP bind address (e.g., ":6789")
//	-k string     follower-callback bind address
//	-m string     reward multicast group (e.g., "239.255.32.32:4446")
//	-w duration   reward-engine pass interval (e.g., "10s")
//	-f string     snapshot file path
//	-i duration   snapshot interval (e.g., "30s")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-m", "-w", "-f", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.CallbackAddr, "k", config.CallbackAddr, "follower callback address")
	fs.StringVar(&config.MulticastAddr, "m", config.MulticastAddr, "reward multicast group")
	fs.DurationVar(&config.RewardInterval, "w", config.RewardInterval, "reward pass interval")
	fs.StringVar(&config.SnapshotPath, "f", config.SnapshotPath, "snapshot file path")
	fs.DurationVar(&config.SnapshotInterval, "i", config.SnapshotInterval, "snapshot interval")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
