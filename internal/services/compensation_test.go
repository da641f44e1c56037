package services

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testCompLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger.WithField("component", "test")
}

func TestCompensationList_RunsInReverseOrder(t *testing.T) {
	comp := NewCompensationList(testCompLogger())

	var order []string
	comp.Add("first", func() error {
		order = append(order, "first")
		return nil
	})
	comp.Add("second", func() error {
		order = append(order, "second")
		return nil
	})
	comp.Add("third", func() error {
		order = append(order, "third")
		return nil
	})

	assert.Equal(t, 3, comp.Len())
	comp.Run()

	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, 0, comp.Len())
}

func TestCompensationList_ContinuesPastFailedStep(t *testing.T) {
	comp := NewCompensationList(testCompLogger())

	var order []string
	comp.Add("first", func() error {
		order = append(order, "first")
		return nil
	})
	comp.Add("second", func() error {
		order = append(order, "second")
		return errors.New("undo failed")
	})
	comp.Add("third", func() error {
		order = append(order, "third")
		return nil
	})

	comp.Run()

	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestCompensationList_EmptyRunIsNoop(t *testing.T) {
	comp := NewCompensationList(testCompLogger())
	assert.Equal(t, 0, comp.Len())
	comp.Run()
}
