package common

// PackageName identifies the service in metrics and logs.
const PackageName = "reverse-resolution-backend"

// Version is set at build time via -ldflags.
var Version = "dev"
