package config

import (
	"flag"
	"os"

	"winsome/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the main server endpoint
//	-k string   address and port of the follower-callback endpoint
//	-m string   UDP multicast group for reward announcements
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port to access server")
	fs.StringVar(&cfg.CallbackAddr, "k", cfg.CallbackAddr, "follower callback address")
	fs.StringVar(&cfg.MulticastAddr, "m", cfg.MulticastAddr, "reward multicast group")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
