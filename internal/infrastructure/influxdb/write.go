package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoint queues one point. A zero timestamp means now.
// Points written while disconnected are discarded.
//
//	client.WritePoint("fontsound_stats",
//	    map[string]string{"device": "synth0"},
//	    map[string]any{"live": 12, "linked": 3},
//	    time.Time{})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() || len(fields) == 0 {
		return
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}
