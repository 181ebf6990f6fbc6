package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Portal  PortalConfig  `yaml:"portal" mapstructure:"portal"`
	FMC     FMCConfig     `yaml:"fmc" mapstructure:"fmc"`
	Acquire AcquireConfig `yaml:"acquire" mapstructure:"acquire"`
	Sites   SitesConfig   `yaml:"sites" mapstructure:"sites"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PortalConfig configures the yard-management web application endpoints.
type PortalConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	LandingPath string `yaml:"landing_path" mapstructure:"landing_path"`
	StateURL    string `yaml:"state_url" mapstructure:"state_url"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FMCConfig configures the secondary (FMC) dataset source.
type FMCConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	CookieFile  string `yaml:"cookie_file" mapstructure:"cookie_file"`
	ExportDir   string `yaml:"export_dir" mapstructure:"export_dir"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AcquireConfig configures the acquisition retry cycle.
type AcquireConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	CooldownSecs     int `yaml:"cooldown_secs" mapstructure:"cooldown_secs"`
	SwitchSettleSecs int `yaml:"switch_settle_secs" mapstructure:"switch_settle_secs"`
}

// SitesConfig holds the static site topology: routing accounts for the
// switch-yard call, external yard links, and FMC execution views.
type SitesConfig struct {
	RoutingAccounts  map[string]string `yaml:"routing_accounts" mapstructure:"routing_accounts"`
	ExternalAccounts map[string]string `yaml:"external_accounts" mapstructure:"external_accounts"`
	ExternalLinks    map[string]string `yaml:"external_links" mapstructure:"external_links"`
	FMCViews         map[string]string `yaml:"fmc_views" mapstructure:"fmc_views"`
}

// RoutingTarget resolves a site code to its routing account id. External
// yard codes resolve through the external account map.
func (s SitesConfig) RoutingTarget(site string) (string, bool) {
	if id, ok := s.RoutingAccounts[site]; ok {
		return id, true
	}
	id, ok := s.ExternalAccounts[site]
	return id, ok
}

// LinkedExternal returns the linked external yard for a site, if any.
// At most one link exists per site.
func (s SitesConfig) LinkedExternal(site string) (string, bool) {
	ext, ok := s.ExternalLinks[site]
	return ext, ok
}

// Known reports whether the site code appears anywhere in the topology.
func (s SitesConfig) Known(site string) bool {
	_, ok := s.RoutingTarget(site)
	return ok
}

// StoreConfig configures the run archive.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the report HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("YARDOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("portal.base_url", "https://trans-logistics-eu.amazon.com")
	v.SetDefault("portal.landing_path", "/yms/shipclerk/#/yard")
	v.SetDefault("portal.state_url", "https://jwmjkz3dsd.execute-api.eu-west-1.amazonaws.com/call/getYardStateWithPendingMoves")
	v.SetDefault("portal.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0")
	v.SetDefault("portal.timeout_secs", 30)

	v.SetDefault("fmc.base_url", "https://trans-logistics-eu.amazon.com")
	v.SetDefault("fmc.timeout_secs", 30)

	v.SetDefault("acquire.max_attempts", 7)
	v.SetDefault("acquire.cooldown_secs", 15)
	v.SetDefault("acquire.switch_settle_secs", 15)

	v.SetDefault("store.path", "yardops.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Yard switch routing accounts per site.
	v.SetDefault("sites.routing_accounts", map[string]string{
		"ZAZ1": "A1TBTQ2PRMRJ6R",
		"LBA4": "A2NUUKXUDY50AC",
		"BHX4": "A336I0T792ISZT",
		"CDG7": "A1XK6DE29OXHBW",
		"DTM1": "A3EM063H1X4XBL",
		"DTM2": "A3EM063H1X4XBL",
		"HAJ1": "A3RSPQ6QYQJ722",
		"WRO5": "AM2D5J5KVLIRM",
		"TRN3": "ACY7ZIYJ0ITPF",
	})
	v.SetDefault("sites.external_accounts", map[string]string{
		"VEEY":        "A25THGKI82ZJ9J",
		"SHRT-HAJ1-1": "A106NBY2LZDDVF",
		"YWRO":        "A1IW1BAVBUZC61",
	})
	// Sites whose report always folds in a linked external yard.
	v.SetDefault("sites.external_links", map[string]string{
		"DTM1": "VEEY",
		"DTM2": "VEEY",
		"HAJ1": "SHRT-HAJ1-1",
		"WRO5": "YWRO",
	})
	// FMC execution view ids per site.
	v.SetDefault("sites.fmc_views", map[string]string{
		"CDG7": "oI10yV",
		"WRO5": "0410vi",
		"LBA4": "1Y10sQ",
		"HAJ1": "n210sU",
		"DTM1": "Fk10bB",
		"DTM2": "fj10mV",
		"BHX4": "9110zl",
		"ZAZ1": "sz10iy",
		"TRN3": "Am10iy",
	})
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
