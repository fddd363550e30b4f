package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dmitrijs2005/custodian/internal/common"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "CUSTODIAN"

// parseEnv overlays CUSTODIAN_* environment variables, e.g.
// CUSTODIAN_DATABASE_DSN or CUSTODIAN_SHARE_CODE_MAX_TTL=720h.
func parseEnv(config *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)

	strs := map[string]*string{
		"endpoint_addr_grpc":        &config.EndpointAddrGRPC,
		"endpoint_addr_http":        &config.EndpointAddrHTTP,
		"database_dsn":              &config.DatabaseDSN,
		"auth_provider":             &config.AuthProvider,
		"jwt_secret":                &config.JWTSecret,
		"firebase_project_id":       &config.FirebaseProjectID,
		"firebase_credentials_file": &config.FirebaseCredentialsFile,
		"s3_access_key":             &config.S3AccessKey,
		"s3_secret_key":             &config.S3SecretKey,
		"s3_bucket":                 &config.S3Bucket,
		"s3_region":                 &config.S3Region,
		"s3_base_endpoint":          &config.S3BaseEndpoint,
		"amqp_url":                  &config.AMQPURL,
		"amqp_queue":                &config.AMQPQueue,
		"log_format":                &config.LogFormat,
		"log_level":                 &config.LogLevel,
	}
	durations := map[string]*time.Duration{
		"presign_ttl":            &config.PresignTTL,
		"share_code_default_ttl": &config.ShareCodeDefaultTTL,
		"share_code_max_ttl":     &config.ShareCodeMaxTTL,
		"anomaly_burst_window":   &config.Anomaly.BurstWindow,
		"anomaly_address_window": &config.Anomaly.AddressWindow,
	}
	ints := map[string]*int{
		"anomaly_burst_limit":            &config.Anomaly.BurstLimit,
		"anomaly_max_distinct_addresses": &config.Anomaly.MaxDistinctAddresses,
		"access_history_limit":           &config.AccessHistoryLimit,
	}

	for key, dst := range strs {
		if err := v.BindEnv(key); err != nil {
			return err
		}
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	for key, dst := range durations {
		if err := v.BindEnv(key); err != nil {
			return err
		}
		if !v.IsSet(key) {
			continue
		}
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return fmt.Errorf("%w: %s_%s: %v", common.ErrorConfig, EnvPrefix, strings.ToUpper(key), err)
		}
		*dst = d
	}

	for key, dst := range ints {
		if err := v.BindEnv(key); err != nil {
			return err
		}
		if !v.IsSet(key) {
			continue
		}
		n, err := strconv.Atoi(v.GetString(key))
		if err != nil {
			return fmt.Errorf("%w: %s_%s: %v", common.ErrorConfig, EnvPrefix, strings.ToUpper(key), err)
		}
		*dst = n
	}

	if err := v.BindEnv("cors_allowed_origins"); err != nil {
		return err
	}
	if v.IsSet("cors_allowed_origins") {
		config.CORSAllowedOrigins = splitList(v.GetString("cors_allowed_origins"))
	}

	if err := v.BindEnv("trusted_proxies"); err != nil {
		return err
	}
	if v.IsSet("trusted_proxies") {
		config.TrustedProxies = splitList(v.GetString("trusted_proxies"))
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
