package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tunedex/tunedex"
)

func init() {
	// Bind command-line flags
	pflag.String("host", "0.0.0.0:8080", "Host and port for the tunedex server")
	pflag.String("data-folder", "./data", "Path to the data folder")
	pflag.String("jwt-secret", "", "Secret for bearer auth; empty disables auth")
	pflag.String("config", "", "Path to the configuration file")
	pflag.Bool("pprof", false, "Start the profiling server on localhost:6060")

	f := pflag.CommandLine
	normalizeFunc := f.GetNormalizeFunc()
	f.SetNormalizeFunc(func(fs *pflag.FlagSet, name string) pflag.NormalizedName {
		result := normalizeFunc(fs, name)
		name = strings.ReplaceAll(string(result), "-", "_")
		return pflag.NormalizedName(name)
	})
}

func LoadConfig() error {
	// Set default values
	viper.SetDefault("host", "0.0.0.0:8080")
	viper.SetDefault("data_folder", "./data")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Bind command-line flags to Viper
	viper.BindPFlags(pflag.CommandLine)

	// Bind environment variables
	viper.AutomaticEnv()

	// Read configuration file if specified
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("tunedex.conf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc")
	}

	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Using defaults and command line/environment options\n     (%v)\n", err)
	}

	// Unmarshal configuration into struct
	var cfg tunedex.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to decode into struct, %v", err)
	}

	// Ensure the data folder exists
	if _, err := os.Stat(cfg.DataFolder); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.DataFolder, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create data folder: %v", err)
		}
	}

	fmt.Println("Configuration values:")
	fmt.Printf("Host: %s\n", cfg.Host)
	fmt.Printf("Data Folder: %s\n", cfg.DataFolder)

	tunedex.Configure(cfg)

	return nil
}
