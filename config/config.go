package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type SystemConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	JwtSecret string `yaml:"jwt_secret" json:"jwt_secret" mapstructure:"jwt_secret"`
}

func (w WebConfig) Addr() string {
	host := w.Host
	if host == "" {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, w.Port)
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn" mapstructure:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn" mapstructure:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable" mapstructure:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// CheckoutConfig tunes the order ledger's surrounding policies.
type CheckoutConfig struct {
	// CommissionRate is the platform commission in basis points applied to
	// the order total at creation time (100 = 1%).
	CommissionRate int64 `yaml:"commission_rate" json:"commission_rate" mapstructure:"commission_rate"`
	// StalePendingMinutes is how long a pending unpaid order may sit before
	// the background sweep cancels it and restocks. Zero disables the sweep.
	StalePendingMinutes int `yaml:"stale_pending_minutes" json:"stale_pending_minutes" mapstructure:"stale_pending_minutes"`
}

type AppConfig struct {
	System   SystemConfig   `yaml:"system" json:"system"`
	Web      WebConfig      `yaml:"web" json:"web"`
	Database DBConfig       `yaml:"database" json:"database"`
	Logger   LogConfig      `yaml:"logger" json:"logger"`
	Checkout CheckoutConfig `yaml:"checkout" json:"checkout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("system.appid", "vendora")
	v.SetDefault("system.location", "Asia/Shanghai")
	v.SetDefault("system.workdir", "/var/vendora")
	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 1816)
	v.SetDefault("web.jwt_secret", "9b6de5cc-vendora-0f03-ad")
	v.SetDefault("database.type", "postgres")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "vendora")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.max_conn", 100)
	v.SetDefault("database.idle_conn", 10)
	v.SetDefault("logger.mode", "development")
	v.SetDefault("logger.filename", "/var/vendora/vendora.log")
	v.SetDefault("checkout.commission_rate", 0)
	v.SetDefault("checkout.stale_pending_minutes", 120)
}

// LoadConfig reads the yaml configuration file and merges VENDORA_* env
// overrides (e.g. VENDORA_DATABASE_HOST). A missing file is not an error;
// defaults apply.
func LoadConfig(cfile string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("vendora")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfile != "" {
		v.SetConfigFile(cfile)
		if err := v.ReadInConfig(); err != nil {
			_, notFound := err.(viper.ConfigFileNotFoundError)
			if !notFound && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
