package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "SHOP_CONFIG_FILE"

type erp struct {
	BaseURL     string        `mapstructure:"base_url"`
	User        string        `mapstructure:"user"`
	Pass        string        `mapstructure:"pass"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PingTimeout time.Duration `mapstructure:"ping_timeout"`
	Attempts    int           `mapstructure:"attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

type httpserver struct {
	Addr              string        `mapstructure:"addr"`
	HandlerTimeout    time.Duration `mapstructure:"handler_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type topics struct {
	OrdersRequest  string `mapstructure:"orders_request"`
	OrdersResponse string `mapstructure:"orders_response"`
}

type brokerTLS struct {
	CACert     string `mapstructure:"ca_cert"`
	ClientCert string `mapstructure:"client_cert"`
	ClientKey  string `mapstructure:"client_key"`
}

func (t brokerTLS) Enabled() bool {
	return t.CACert != "" && t.ClientCert != "" && t.ClientKey != ""
}

type broker struct {
	Enabled            bool          `mapstructure:"enabled"`
	SeedBrokers        []string      `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string      `mapstructure:"schema_registry_urls"`
	Topics             topics        `mapstructure:"topics"`
	ResponseGroup      string        `mapstructure:"response_group"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	TLS                brokerTLS     `mapstructure:"tls"`
}

type importdir struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	LogLevel   slog.Level `mapstructure:"log_level"`
	HTTPServer httpserver `mapstructure:"http_server"`
	SQLDB      string     `mapstructure:"sql_db"`
	ERP        erp        `mapstructure:"erp"`
	Broker     broker     `mapstructure:"broker"`
	Import     importdir  `mapstructure:"import"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	cfg.setDefaults()

	return cfg
}

func (c *Config) setDefaults() {
	if c.HTTPServer.HandlerTimeout == 0 {
		c.HTTPServer.HandlerTimeout = 5 * time.Second
	}
	if c.HTTPServer.ReadHeaderTimeout == 0 {
		c.HTTPServer.ReadHeaderTimeout = 5 * time.Second
	}
	if c.HTTPServer.IdleTimeout == 0 {
		c.HTTPServer.IdleTimeout = 2 * time.Second
	}
	if c.ERP.Timeout == 0 {
		c.ERP.Timeout = 8 * time.Second
	}
	if c.ERP.PingTimeout == 0 {
		c.ERP.PingTimeout = 3 * time.Second
	}
	if c.ERP.Attempts == 0 {
		c.ERP.Attempts = 3
	}
	if c.ERP.BaseDelay == 0 {
		c.ERP.BaseDelay = 200 * time.Millisecond
	}
	if c.Broker.RequestTimeout == 0 {
		c.Broker.RequestTimeout = 30 * time.Second
	}
	if c.Import.Path == "" {
		c.Import.Path = "erp_import"
	}
}

func getConfigFilepath() string {
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	SQLDB=%q

	HTTPServer:
	Addr=%q
	HandlerTimeout=%q
	ReadHeaderTimeout=%q
	IdleTimeout=%q

	ERP:
	BaseURL=%q
	User=%q
	Timeout=%q
	PingTimeout=%q
	Attempts=%d
	BaseDelay=%q

	Broker:
	Enabled=%v
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		OrdersRequest=%q
		OrdersResponse=%q
	ResponseGroup=%q
	RequestTimeout=%q

	Import:
	Path=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.SQLDB,
		c.HTTPServer.Addr,
		c.HTTPServer.HandlerTimeout,
		c.HTTPServer.ReadHeaderTimeout,
		c.HTTPServer.IdleTimeout,
		c.ERP.BaseURL,
		c.ERP.User,
		c.ERP.Timeout,
		c.ERP.PingTimeout,
		c.ERP.Attempts,
		c.ERP.BaseDelay,
		c.Broker.Enabled,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.OrdersRequest,
		c.Broker.Topics.OrdersResponse,
		c.Broker.ResponseGroup,
		c.Broker.RequestTimeout,
		c.Import.Path,
	)
}
