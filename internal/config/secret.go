package config

// CompiledSecret holds the bridge secret provided at build time via -ldflags.
// When empty, the application falls back to SCRIPTHUB_BRIDGE_TOKEN,
// SCRIPTHUB_SECRET, or a random per-launch token.
var CompiledSecret string
