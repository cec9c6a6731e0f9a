// Package cli implements the xdraft command line.
//
// Every command shares the same cache file and configuration: environment
// variables (XDRAFT_*) give the defaults and persistent flags override them.
// Commands that need the cache open it once, run, and close it before exit.
package cli
