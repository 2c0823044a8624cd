package version

// Set with -ldflags "-X opencsg.com/auth-exerciser/version.GitRevision=..." at build time.
var (
	GitRevision = "unknown"
	Version     = "v0.1.0"
)
