// Package startup handles configuration loading, directory validation and
// the startup/shutdown reporting printed to the log.
package startup
