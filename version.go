package cadre

// Version is the library version, overridable at build time via
// -ldflags "-X github.com/avells/cadre.Version=...".
var Version = "0.1.0"
