// Package main hosts the conlog CLI entrypoint and command graph.
//
// The Cobra command tree exercises the logging façade end to end: demo
// scenarios, piping stdin through a subject, browsing the history journal,
// formatting one-shot app messages, and configuration scaffolding. Config
// resolution and logger construction live in the command context so
// subcommands only deal with their own flags.
package main
