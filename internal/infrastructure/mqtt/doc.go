// Package mqtt publishes fontsound device events to an MQTT broker.
//
// The Client manages the broker connection (auto-reconnect, TLS, Last Will
// and Testament) and the EventPublisher turns fontsound.Event values into
// JSON messages without blocking the device.
//
// # Topics
//
//	fontsound/system/status               retained online/offline status (LWT)
//	fontsound/<device>/events/<kind>      created, deleted, param_set, linked, teardown
//
// The fontsound prefix is configurable (mqtt.topic_prefix).
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	pub := mqtt.NewEventPublisher(client, mqtt.NewTopics(cfg.MQTT.TopicPrefix), byte(cfg.MQTT.QoS), 0)
//	go pub.Run(ctx)
//	dev.SetObserver(pub)
//
// # Security Considerations
//
//   - Enable TLS (mqtt.broker.tls) outside local development
//   - Supply credentials through FONTSOUND_MQTT_USERNAME and FONTSOUND_MQTT_PASSWORD
package mqtt
