// Package startup handles process initialization: configuration loading
// from environment variables and an optional .env file, directory
// validation, build information, and the sectioned startup/shutdown log
// output.
package startup
