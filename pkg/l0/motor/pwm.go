package motor

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/openrover/pkg/l0/hal"
)

// DefaultPWMPeriod is how often the compare value is refreshed.
const DefaultPWMPeriod = time.Millisecond

// PWM samples DutyCycle on every period and writes the compare value,
// like the timer overflow interrupt on the MCU.
type PWM struct {
	Duty   *DutyCycle
	Driver hal.PWMDriver
	Period time.Duration

	failing bool
}

// NewPWM creates a PWM with the default period.
func NewPWM(duty *DutyCycle, driver hal.PWMDriver) *PWM {
	return &PWM{Duty: duty, Driver: driver, Period: DefaultPWMPeriod}
}

// Name implements Named.
func (p *PWM) Name() string {
	return "pwm"
}

// Update writes the current duty cycle to the driver.
func (p *PWM) Update() error {
	return p.Driver.SetCompare(p.Duty.Compare(p.Driver.MaxCompare()))
}

// Run implements Runnable.
func (p *PWM) Run(ctx context.Context) error {
	period := p.Period
	if period <= 0 {
		period = DefaultPWMPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := p.Update()
			if err != nil && !p.failing {
				glog.Warningf("pwm: set compare failed: %v", err)
			} else if err == nil && p.failing {
				glog.Info("pwm: recovered")
			}
			p.failing = err != nil
		}
	}
}
