// Package logging implements the conlog façade: a Logger that normalizes
// heterogeneous log calls and fans them out to pluggable sinks.
//
// A Logger owns an ordered set of sinks resolved by name through a Registry.
// Sinks implement the minimal Sink interface and opt into extra behaviour
// (raw writes, line clearing, lifecycle hooks, progress events) through small
// capability interfaces. Dispatch is serialized and isolated: a sink that
// returns an error or panics never prevents delivery to the remaining sinks,
// and its failure is re-rendered through a fallback console sink.
//
// The first string of a multi-item Log call is treated as a subject. Subjects
// are emphasized the first time they appear and de-emphasized afterwards, so
// related lines group visually on the console. The StandardOut sink is always
// available and is registered lazily when a Logger is used before Initialize.
//
// The package also carries the slog plumbing used for conlog's own
// diagnostics and a bridge that lets slog callers write through a Logger.
package logging
