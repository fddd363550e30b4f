package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/flagx"
	"github.com/dmitrijs2005/custodian/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Zero values mean
// "not set" and leave the current value untouched.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	DatabaseDSN      string `json:"database_dsn"`

	AuthProvider            string `json:"auth_provider"`
	JWTSecret               string `json:"jwt_secret"`
	FirebaseProjectID       string `json:"firebase_project_id"`
	FirebaseCredentialsFile string `json:"firebase_credentials_file"`

	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	PresignTTL     timex.Duration `json:"presign_ttl"`

	AMQPURL   string `json:"amqp_url"`
	AMQPQueue string `json:"amqp_queue"`

	LogFormat string `json:"log_format"`
	LogLevel  string `json:"log_level"`

	CORSAllowedOrigins []string `json:"cors_allowed_origins"`
	TrustedProxies     []string `json:"trusted_proxies"`

	ShareCodeDefaultTTL timex.Duration `json:"share_code_default_ttl"`
	ShareCodeMaxTTL     timex.Duration `json:"share_code_max_ttl"`

	AnomalyBurstWindow          timex.Duration `json:"anomaly_burst_window"`
	AnomalyBurstLimit           int            `json:"anomaly_burst_limit"`
	AnomalyAddressWindow        timex.Duration `json:"anomaly_address_window"`
	AnomalyMaxDistinctAddresses int            `json:"anomaly_max_distinct_addresses"`
	AccessHistoryLimit          int            `json:"access_history_limit"`
}

// parseJson overlays values from the file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read config file: %v", common.ErrorConfig, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("%w: parse config file: %v", common.ErrorConfig, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AuthProvider, c.AuthProvider)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.FirebaseProjectID, c.FirebaseProjectID)
	setString(&config.FirebaseCredentialsFile, c.FirebaseCredentialsFile)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.AMQPURL, c.AMQPURL)
	setString(&config.AMQPQueue, c.AMQPQueue)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)

	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if len(c.TrustedProxies) > 0 {
		config.TrustedProxies = c.TrustedProxies
	}

	setDuration(&config.PresignTTL, c.PresignTTL)
	setDuration(&config.ShareCodeDefaultTTL, c.ShareCodeDefaultTTL)
	setDuration(&config.ShareCodeMaxTTL, c.ShareCodeMaxTTL)
	setDuration(&config.Anomaly.BurstWindow, c.AnomalyBurstWindow)
	setDuration(&config.Anomaly.AddressWindow, c.AnomalyAddressWindow)
	setInt(&config.Anomaly.BurstLimit, c.AnomalyBurstLimit)
	setInt(&config.Anomaly.MaxDistinctAddresses, c.AnomalyMaxDistinctAddresses)
	setInt(&config.AccessHistoryLimit, c.AccessHistoryLimit)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
