package logger

import (
	"bytes"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitSetsLevelAndAppField(t *testing.T) {
	Init("clockguard-test", "debug")
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	Logger.Info("hello")
	assert.Contains(t, buf.String(), "app=clockguard-test")
}

func TestInitFallsBackToInfo(t *testing.T) {
	Init("clockguard-test", "loud")
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
}

func TestWatermillAdapter(t *testing.T) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)

	a := NewWatermillAdapter(l).With(watermill.LogFields{"topic": "clockguard.verdict"})
	a.Debug("published", watermill.LogFields{"uuid": "m-1"})
	a.Trace("hidden", nil)

	out := buf.String()
	assert.Contains(t, out, "component=watermill")
	assert.Contains(t, out, "topic=clockguard.verdict")
	assert.Contains(t, out, "uuid=m-1")
	assert.NotContains(t, out, "hidden")
}
