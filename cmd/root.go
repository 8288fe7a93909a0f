package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-portal/internal/filtering"
	"github.com/spigell/job-portal/internal/portal"
)

const (
	app = "job-portal"
)

type Config struct {
	BackendURL     string        `mapstructure:"backend-url"`
	UserAgent      string        `mapstructure:"user-agent"`
	TokenFile      string        `mapstructure:"token-file"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	UploadTimeout  time.Duration `mapstructure:"upload-timeout"`
	Resume         string        `mapstructure:"resume"`
	Search         string        `mapstructure:"search"`
	Location       string        `mapstructure:"location"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-portal is a cli for matching your resume against the job portal catalog",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("token-file", "JOB_PORTAL_TOKEN_FILE"); err != nil {
		log.Fatalf("binding JOB_PORTAL_TOKEN_FILE environment variable: %v", err)
	}

	viper.SetDefault("backend-url", portal.DefaultBackendURL)
	viper.SetDefault("request-timeout", portal.DefaultRequestTimeout)
	viper.SetDefault("upload-timeout", portal.DefaultUploadTimeout)
	viper.SetDefault("location", filtering.AllLocations)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-portal.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("backend-url", portal.DefaultBackendURL, "job portal backend base url")
	rootCmd.PersistentFlags().StringP("resume", "r", "", "path to the resume PDF")
	rootCmd.PersistentFlags().StringP("search", "s", "", "show only jobs whose title contains this text")
	rootCmd.PersistentFlags().StringP("location", "l", filtering.AllLocations, "show only jobs at this exact location")

	for _, name := range []string{"debug", "json", "backend-url", "resume", "search", "location"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional, flags and defaults are enough to talk to a local backend.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
