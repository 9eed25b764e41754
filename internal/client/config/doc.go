// Package config loads runtime configuration for the winsome CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   host:port of the main server endpoint
//	-k string   host:port of the follower-callback endpoint
//	-m string   UDP multicast group for reward announcements
//
// # JSON schema
//
//	{
//	  "server_addr": "127.0.0.1:6789",
//	  "callback_addr": "127.0.0.1:6790",
//	  "multicast_addr": "239.255.32.32:4446"
//	}
package config
