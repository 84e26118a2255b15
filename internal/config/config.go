package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/storefront-hq/storectl/internal/meta"
	"github.com/storefront-hq/storectl/internal/util/viper"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var defaultConfigFileName = "config.yaml"

const (
	BaseURLConfigPath          = "storefront.base-url"
	TokenConfigPath            = "storefront.token"
	TimeoutConfigPath          = "storefront.timeout"
	RetriesConfigPath          = "storefront.retries"
	RealtimeURLConfigPath      = "realtime.url"
	RealtimeChannelConfigPath  = "realtime.channel"
	PollIntervalConfigPath     = "notifications.poll-interval"
	SessionBackendConfigPath   = "session.backend"
	LogFileConfigPath          = "log-file"
	DefaultBaseURL             = "http://localhost:3000"
	DefaultTimeout             = 30 * time.Second
	DefaultRetries             = 2
	DefaultPollInterval        = 5 * time.Second
	DefaultRealtimeChannel     = "NotificationsChannel"
	DefaultSessionBackend      = "file"
	defaultOutputFormat        = "text"
	defaultLogLevel            = "info"
	defaultOutputConfigPath    = "output"
	defaultLogLevelConfigPath  = "log-level"
	defaultColorModeConfigPath = "color"
)

// Returns the expanded default config path depending on what
// environment variables are set. If XDG_CONFIG_HOME is set,
// the default is $XDG_CONFIG_HOME/storectl,
// otherwise the default is os.UserHomeDir()/.config/storectl.
// If these values are not set, an error is returned.
func GetDefaultConfigPath() (string, error) {
	val, set := os.LookupEnv("XDG_CONFIG_HOME")
	if !set || val == "" {
		var err error
		val, err = os.UserHomeDir()
		if err != nil {
			return "", err
		}
		val = filepath.Join(val, ".config")
	}
	val = filepath.Join(val, meta.CLIName)
	return os.ExpandEnv(val), nil
}

func GetDefaultConfigFilePath() (string, error) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(path, defaultConfigFileName), nil
}

// GetConfig returns the configuration for this instance of the CLI
func GetConfig(path string, profile string, defaultConfigFilePath string) (*ProfiledConfig, error) {
	var rv *ProfiledConfig
	var err error

	path = os.ExpandEnv(path)

	_, err = os.Stat(path)
	if err == nil {
		// If the user provides a valid file path, we should strictly load it or fail immediately
		vip, e := viper.NewViperE(path)
		if e == nil {
			rv = BuildProfiledConfig(profile, path, vip)
		} else {
			err = e
		}
	} else if path == defaultConfigFilePath {
		// The default file is created on first use, including its directory
		var vip *v.Viper
		vip, err = viper.InitializeDefaultViper(getDefaultConfig(profile, path), path)
		if err == nil {
			rv = BuildProfiledConfig(profile, path, vip)
		}
	} else {
		err = fmt.Errorf("the provided config file path does not exist")
	}
	return rv, err
}

// Empty type to represent the _type_ Config. Genesis is to support a key in a Context
type Key struct{}

// Config is a global instance of the Key type
var ConfigKey = Key{}

// Hook provides a generatlization of the Viper interface
// but allows some control, specifically over the Save functionality
type Hook interface {
	// Save writes the configuration to the file system
	Save() error
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetIntOrElse(key string, orElse int) int
	// GetDurationOrElse returns a duration value or a default when unset or non-positive
	GetDurationOrElse(key string, orElse time.Duration) time.Duration
	GetStringSlice(key string) []string
	SetString(key string, value string)
	Set(k string, v any)
	Get(key string) any
	// BindFlag takes a specific configuration path and
	// binds it to a specific flag
	BindFlag(configPath string, f *pflag.Flag) error
	// The profile for this configuration
	GetProfile() string
	// The file path used to load this configuration
	GetPath() string
}

// ProfiledConfig is a Viper but with an associated profile ProfileName
//
//	allows for extraction of the profile specific sub-configuration
//	and implements the Hook interface for more restricted interactions
//	with the configuration system
type ProfiledConfig struct {
	*v.Viper
	subViper    *v.Viper
	ProfileName string
	Path        string
}

func (p *ProfiledConfig) GetProfile() string {
	return p.ProfileName
}

func (p *ProfiledConfig) Save() error {
	p.Viper.Set(p.ProfileName, p.subViper.AllSettings())
	return p.WriteConfig()
}

func (p *ProfiledConfig) GetString(key string) string {
	return p.subViper.GetString(key)
}

func (p *ProfiledConfig) GetBool(key string) bool {
	return p.subViper.GetBool(key)
}

func (p *ProfiledConfig) GetInt(key string) int {
	return p.subViper.GetInt(key)
}

func (p *ProfiledConfig) GetIntOrElse(key string, orElse int) int {
	if p.subViper.IsSet(key) {
		return p.subViper.GetInt(key)
	}
	return orElse
}

func (p *ProfiledConfig) GetDurationOrElse(key string, orElse time.Duration) time.Duration {
	if !p.subViper.IsSet(key) {
		return orElse
	}
	if d := p.subViper.GetDuration(key); d > 0 {
		return d
	}
	return orElse
}

func (p *ProfiledConfig) GetStringSlice(key string) []string {
	return p.subViper.GetStringSlice(key)
}

func (p *ProfiledConfig) Get(key string) any {
	return p.subViper.Get(key)
}

func (p *ProfiledConfig) BindFlag(configPath string, f *pflag.Flag) error {
	return p.subViper.BindPFlag(configPath, f)
}

func (p *ProfiledConfig) SetString(k string, v string) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) Set(k string, v any) {
	p.subViper.Set(k, v)
}

func (p *ProfiledConfig) GetPath() string {
	return p.Path
}

func BuildProfiledConfig(profile string, path string, mainv *v.Viper) *ProfiledConfig {
	subv := mainv.Sub(profile)
	if subv == nil {
		// in this case the main viper is valid, but there is no
		// key or data under the key for this profile name
		subv = v.New()
		// Profile-specific environment variables must still resolve when
		// the profile is absent from the config file
		envPrefix := meta.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(profile, "-", "_"))
		viper.ConfigureEnvVars(subv, envPrefix)
	}

	return &ProfiledConfig{
		Viper:       mainv,
		ProfileName: profile,
		subViper:    subv,
		Path:        path,
	}
}

func getDefaultConfig(profileName, configFilePath string) map[string]any {
	configDir := filepath.Dir(configFilePath)
	defaultLogPath := filepath.Join(configDir, "logs", meta.CLIName+".log")

	return map[string]any{
		profileName: map[string]any{
			defaultOutputConfigPath:    defaultOutputFormat,
			defaultLogLevelConfigPath:  defaultLogLevel,
			defaultColorModeConfigPath: "auto",
			LogFileConfigPath:          defaultLogPath,
			"storefront": map[string]any{
				"base-url": DefaultBaseURL,
				"timeout":  DefaultTimeout.String(),
				"retries":  DefaultRetries,
			},
			"realtime": map[string]any{
				"channel": DefaultRealtimeChannel,
			},
			"notifications": map[string]any{
				"poll-interval": DefaultPollInterval.String(),
			},
			"session": map[string]any{
				"backend": DefaultSessionBackend,
			},
		},
	}
}
