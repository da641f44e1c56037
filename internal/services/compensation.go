package services

import (
	"github.com/sirupsen/logrus"
)

// compensationStep is a named undo action registered after a successful
// workflow write
type compensationStep struct {
	name string
	undo func() error
}

// CompensationList collects undo actions for a multi-write workflow.
// When a later step fails, Run executes the undos in reverse
// registration order. Undo failures are logged and skipped: rollback is
// best effort and never masks the original error.
type CompensationList struct {
	steps  []compensationStep
	logger *logrus.Entry
}

// NewCompensationList creates an empty compensation list
func NewCompensationList(logger *logrus.Entry) *CompensationList {
	return &CompensationList{logger: logger}
}

// Add registers an undo action for a completed step
func (c *CompensationList) Add(name string, undo func() error) {
	c.steps = append(c.steps, compensationStep{name: name, undo: undo})
}

// Run executes all registered undos in reverse order
func (c *CompensationList) Run() {
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.undo(); err != nil {
			c.logger.WithError(err).WithField("step", step.name).Error("Compensation step failed")
		} else {
			c.logger.WithField("step", step.name).Info("Compensation step completed")
		}
	}
	c.steps = nil
}

// Len returns the number of registered steps
func (c *CompensationList) Len() int {
	return len(c.steps)
}
