package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/custodian/internal/flagx"
)

// parseFlags applies command-line overrides.
//
//	-a string   gRPC bind address
//	-w string   HTTP share portal bind address
//	-d string   PostgreSQL DSN
//	-i string   identity provider (jwt|firebase)
//	-s string   JWT HMAC secret
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-q string   AMQP URL (empty disables AMQP notifications)
//	-l string   log format (json|zap)
//	-p string   comma-separated trusted proxy IPs or CIDRs
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AuthProvider, "i", config.AuthProvider, "identity provider")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT secret")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.AMQPURL, "q", config.AMQPURL, "AMQP URL")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format")
	fs.Func("p", "trusted proxies", func(s string) error {
		config.TrustedProxies = splitList(s)
		return nil
	})

	return flagx.ParseOwn(fs, args)
}
