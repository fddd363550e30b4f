package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "CUSTODIAN"

func parseEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, k := range []string{"server_addr", "access_token", "request_timeout"} {
		if err := v.BindEnv(k); err != nil {
			return err
		}
	}

	if v.IsSet("server_addr") {
		cfg.ServerEndpointAddr = v.GetString("server_addr")
	}
	if v.IsSet("access_token") {
		cfg.AccessToken = v.GetString("access_token")
	}
	if v.IsSet("request_timeout") {
		d, err := time.ParseDuration(v.GetString("request_timeout"))
		if err != nil {
			return fmt.Errorf("%s_REQUEST_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
