package bmsagent

// Version is the release of this build. Overridden at link time with
// -ldflags "-X github.com/ikenthis/bmsagent.Version=...".
var Version = "0.4.0-dev"
