package tunedex

// Config holds the configuration settings for the service.
type Config struct {
	// Host is the address the REST server listens on.
	Host string `mapstructure:"host"`

	// DataFolder is where collection library files are kept.
	DataFolder string `mapstructure:"data_folder"`

	// JWTSecret enables bearer auth on the API when non-empty.
	JWTSecret string `mapstructure:"jwt_secret"`

	// Pprof starts the profiling server on localhost:6060.
	Pprof bool `mapstructure:"pprof"`
}

var globalConfig Config

func init() {
	globalConfig = Config{
		Host:       "0.0.0.0:8080",
		DataFolder: "./data",
	}
}

// Configure replaces the global configuration. Call it before RunServer.
func Configure(cfg Config) {
	globalConfig = cfg
}
