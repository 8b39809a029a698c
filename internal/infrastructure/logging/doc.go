// Package logging provides structured logging for fontsoundd.
//
// It wraps log/slog with JSON or text output, level filtering and the
// default attributes service and version on every entry. *Logger satisfies
// the small Logger interfaces of the fontsound, mqtt and telemetry packages.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting service", "port", 8080)
//
// Never log MQTT passwords or InfluxDB tokens.
package logging
