package config

import "time"

type HTTP struct {
	Address         string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	MetricAddress   string        `env:"HTTP_METRIC_ADDRESS" envDefault:":9090"`
	ProbeAddress    string        `env:"HTTP_PROBE_ADDRESS" envDefault:":8091"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}
