// Package commands defines the edgeseald CLI.
//
// Commands
//
//   - serve  Run an encrypted edge endpoint in front of a demo API
//
// # Implementation
//
// The root command loads protocol configuration from the environment (and a
// .env file if present) before any subcommand runs, so cryptographic cost
// parameters stay deployable without code changes.
package commands
