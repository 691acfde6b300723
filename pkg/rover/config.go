package rover

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/openrover/pkg/l0/comm"
	"github.com/robotalks/openrover/pkg/l0/hal"
	"github.com/robotalks/openrover/pkg/l0/motor"
	"github.com/robotalks/openrover/pkg/l0/telemetry"
	"github.com/robotalks/openrover/pkg/l1/env"
)

// Config defines the configuration of the rover.
type Config struct {
	// ID identifies the rover in MQTT topics.
	ID string
	// SerialPort is the device of the command link, empty to disable.
	SerialPort string
	BaudRate   int
	// MQTTBrokerURL, e.g. mqtt://host:port/topic-prefix, empty to disable.
	MQTTBrokerURL string
	// ListenAddr serves the websocket link, empty to disable.
	ListenAddr string

	// Simulate moves a simulated rover from the motor state.
	Simulate bool

	RingCapacity    int
	StrictResync    bool
	MaxCompare      uint
	ControlPeriod   time.Duration
	TelemetryPeriod time.Duration
	PWMPeriod       time.Duration
}

var defaultConfig = Config{
	BaudRate:        hal.DefaultBaudRate,
	RingCapacity:    comm.DefaultRingCapacity,
	MaxCompare:      uint(hal.DefaultMaxCompare),
	ControlPeriod:   motor.DefaultControlPeriod,
	TelemetryPeriod: telemetry.DefaultTelemetryPeriod,
	PWMPeriod:       motor.DefaultPWMPeriod,
}

func init() {
	if val := os.Getenv("ROVER_ID"); val != "" {
		defaultConfig.ID = val
	}
	if val := os.Getenv("ROVER_PORT"); val != "" {
		defaultConfig.SerialPort = val
	}
	if val := os.Getenv("ROVER_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.BaudRate = baud
		} else {
			glog.Warningf("invalid ROVER_BAUD %q: %v", val, err)
		}
	}
	if val := os.Getenv("ROVER_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ROVER_LISTEN"); val != "" {
		defaultConfig.ListenAddr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Rover ID, derived from machine ID if empty.")
	flag.StringVar(&defaultConfig.SerialPort, "port", defaultConfig.SerialPort, "Serial port of the command link.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Baud rate of the serial port.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, e.g. mqtt://localhost:1883/openrover/")
	flag.StringVar(&defaultConfig.ListenAddr, "listen", defaultConfig.ListenAddr, "Address to serve the websocket link, e.g. :8080")
	flag.BoolVar(&defaultConfig.Simulate, "sim", defaultConfig.Simulate, "Simulate the motion of the rover.")
	flag.IntVar(&defaultConfig.RingCapacity, "ring-size", defaultConfig.RingCapacity, "Receive buffer capacity in bytes.")
	flag.BoolVar(&defaultConfig.StrictResync, "strict-resync", defaultConfig.StrictResync, "Restart a frame on any start marker.")
	flag.UintVar(&defaultConfig.MaxCompare, "pwm-max", defaultConfig.MaxCompare, "PWM compare value of 100% duty cycle.")
	flag.DurationVar(&defaultConfig.ControlPeriod, "control-period", defaultConfig.ControlPeriod, "Period of the control task.")
	flag.DurationVar(&defaultConfig.TelemetryPeriod, "telemetry-period", defaultConfig.TelemetryPeriod, "Period of the telemetry task.")
	flag.DurationVar(&defaultConfig.PWMPeriod, "pwm-period", defaultConfig.PWMPeriod, "Period of refreshing PWM output.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// RoverID returns ID or the one derived from the machine.
func (c *Config) RoverID() string {
	if c.ID != "" {
		return c.ID
	}
	return env.RoverID()
}
