// Package config loads runtime configuration for the custodian operator CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment: CUSTODIAN_SERVER_ADDR, CUSTODIAN_ACCESS_TOKEN, CUSTODIAN_REQUEST_TIMEOUT.
//  4. Global flags placed before the command name:
//
//	-a string         address:port of the gRPC endpoint
//	-t string         access token
//	-timeout duration per-request timeout
//
// JSON durations accept strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "...",
//	  "request_timeout": "10s"
//	}
package config
