// Package internal contains the implementation packages of the docmux CLI.
//
// # Package Organization
//
//   - index: Reads the project list from the home index document
//   - routes: Route table, its file-backed store and the offline flag
//   - server: Path translation, static file serving and port binding
//   - postprocess: Home link rewriting and remote font stripping
//   - watcher: File system monitoring, debouncing and rebuild dispatch
//   - builder: Project discovery, selection and generator execution
//   - scaffolding: New home documentation directories
//   - config: Configuration loading and validation
//   - errors: Structured errors and operator suggestions
//   - logging, ux, prompt: Logs, terminal output and questions
//   - validation: Command line and name checks
//   - testutils: Home directory fixtures for tests
//
// # Inter-Package Communication
//
// A build or a watch event refreshes the route table through the routes
// Store. The server reads the store on every request, so a running server
// and a separate "docmux build" process share routing state through the
// state directory (.docmux by default) only.
//
// External generators are always run as subprocesses without a shell.
// Command lines containing shell metacharacters are rejected by the config
// package before anything is executed.
package internal
