// Package config loads and validates fontsoundd configuration.
//
// Values come from hard-coded defaults, then a YAML file, then
// FONTSOUND_SECTION_KEY environment variables. Credentials (MQTT password,
// InfluxDB token) should be supplied through the environment.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Device.Name)
package config
