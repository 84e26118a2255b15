package meta

const (
	// CLIName is the binary name and the namespace used for config paths,
	// environment variables and the default User-Agent.
	CLIName = "storectl"

	// EnvPrefix is prepended to every environment variable override.
	EnvPrefix = "STORECTL"
)

// UserAgent returns the User-Agent value sent with every storefront request.
func UserAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return CLIName + "/" + version
}
