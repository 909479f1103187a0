// Package app contains the core application logic. It wires configuration,
// the compiled-in buds and the loaders into an activation pass, decoupled
// from any specific entrypoint like the CLI.
package app
