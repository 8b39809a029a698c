// Package influxdb writes fontsoundd telemetry to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library: Connect pings the
// server and sets up a batched, non-blocking write API. The telemetry
// reporter is the main producer of points.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePoint("fontsound_stats", tags, fields, time.Now())
//
// # Error Handling
//
// Connection and health check errors are returned directly. Write
// failures happen asynchronously and are delivered to the SetOnError
// callback, wrapped in ErrWriteFailed.
//
// Batching follows the batch_size and flush_interval settings.
package influxdb
