package main

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,required=true" validate:"min=1"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true" validate:"min=1"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true" validate:"min=10ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,required=true" validate:"min=1s"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080" validate:"min=1,max=65535"`
	DebugPort            int           `env:"DEBUG_PORT" validate:"omitempty,min=1,max=65535"`
}

// Validate catches nonsensical values early so the process refuses to
// start instead of silently dropping every event.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}
