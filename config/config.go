package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var Conf = config{}

var (
	CfgPath string
	Env     string
)

type config struct {
	ETL              ETLConfig        `mapstructure:"etl" yaml:"etl"`
	Postgresql       PostgresqlConfig `mapstructure:"postgresql" yaml:"postgresql"`
	Redis            RedisConfig      `mapstructure:"redis" yaml:"redis"`
	HTTPServerConfig HTTPServerConfig `mapstructure:"httpserver" yaml:"httpserver"`
	Notifier         NotifierConfig   `mapstructure:"notifier" yaml:"notifier"`
}

type ETLConfig struct {
	Chain       string `mapstructure:"chain" yaml:"chain"`
	ChainID     uint64 `mapstructure:"chain-id" yaml:"chain-id"`
	ProviderURL string `mapstructure:"provider-url" yaml:"provider-url"`
	Workers     int    `mapstructure:"workers" yaml:"workers"`
	LogPath     string `mapstructure:"log-path" yaml:"log-path"`
	Checkpoint  bool   `mapstructure:"checkpoint" yaml:"checkpoint"`
}

type HTTPServerConfig struct {
	Host   string `mapstructure:"host" yaml:"host"`
	Port   int    `mapstructure:"port" yaml:"port"`
	APIKey string `mapstructure:"api-key" yaml:"api-key"`
}

type PostgresqlConfig struct {
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password"`
	Database     string `mapstructure:"database" yaml:"database"`
	Schema       string `mapstructure:"schema" yaml:"schema"`
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	LogMode      bool   `mapstructure:"log-mode" yaml:"log-mode"`
	MaxIdleConns int    `mapstructure:"max-idle-conns" yaml:"max-idle-conns"`
	MaxOpenConns int    `mapstructure:"max-open-conns" yaml:"max-open-conns"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	Password     string `mapstructure:"password" yaml:"password"`
	Database     int    `mapstructure:"database" yaml:"database"`
	MaxIdleConns int    `mapstructure:"max-idle-conns" yaml:"max-idle-conns"`
}

type NotifierConfig struct {
	LarkWebHook  string `mapstructure:"lark-webhook" yaml:"lark-webhook"`
	SlackWebHook string `mapstructure:"slack-webhook" yaml:"slack-webhook"`
}

func setDefaults() {
	viper.SetDefault("etl.chain", "ethereum")
	viper.SetDefault("etl.chain-id", 1)
	viper.SetDefault("etl.workers", 5)
	viper.SetDefault("postgresql.schema", "public")
	viper.SetDefault("postgresql.max-open-conns", 10)
	viper.SetDefault("postgresql.max-idle-conns", 5)
	viper.SetDefault("httpserver.host", "0.0.0.0")
	viper.SetDefault("httpserver.port", 8088)
}

func SetupConfig() {
	if len(CfgPath) < 1 {
		panic(fmt.Errorf("failed to get config path %s", CfgPath))
	}

	setDefaults()
	viper.SetConfigName("config." + Env)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(CfgPath)
	viper.SetEnvPrefix("codetrace")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("failed to read configuration file: %v", err))
	}
	// load config info to global Config variable
	if err = viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("failed to unmarshal configuration file %v", err))
	}

	logrus.Infof("read configuration file successfully")
}
