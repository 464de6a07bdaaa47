package observer

import (
	"github.com/YuminosukeSato/descent/core/training"
)

// Control is the only channel through which observers change a run.
// Learning-rate writes are last-writer-wins in dispatch order. Stop
// requests are honoured by the driver at the next epoch boundary.
type Control struct {
	learningRate float64

	stop       bool
	stopStatus training.Status
	stopReason string
	stoppedBy  string

	current string
}

// NewControl returns a control holding the given learning rate.
func NewControl(learningRate float64) *Control {
	return &Control{learningRate: learningRate}
}

// LearningRate returns the rate that will be used for the next update.
func (c *Control) LearningRate() float64 { return c.learningRate }

// SetLearningRate overrides the learning rate.
func (c *Control) SetLearningRate(rate float64) { c.learningRate = rate }

// Stop asks the driver to end the run with EarlyStopped status.
func (c *Control) Stop(reason string) { c.request(training.EarlyStopped, reason) }

// Converge asks the driver to end the run with Converged status.
func (c *Control) Converge(reason string) { c.request(training.Converged, reason) }

func (c *Control) request(status training.Status, reason string) {
	c.stop = true
	c.stopStatus = status
	c.stopReason = reason
	c.stoppedBy = c.current
}

// StopRequested reports whether any observer asked to stop.
func (c *Control) StopRequested() bool { return c.stop }

// StopStatus returns the status requested by the last stop request.
func (c *Control) StopStatus() training.Status { return c.stopStatus }

// StopReason returns the reason given with the last stop request.
func (c *Control) StopReason() string { return c.stopReason }

// StoppedBy names the observer that made the last stop request.
func (c *Control) StoppedBy() string { return c.stoppedBy }
