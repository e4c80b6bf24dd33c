package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	return ForService(name), buf
}

func TestPrefixInfo(t *testing.T) {
	SetGlobalDebug(false)

	const name = "prefix_service_test"
	l, buf := newTestLogger(t, name)

	l.Infof("hello %s", "world")
	out := buf.String()

	assert.Contains(t, out, "["+name+">]")
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "service="+name)
	assert.Contains(t, out, "level=info")
}

func TestDebugPerService(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_service_specific"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("should not appear")
	assert.NotContains(t, buf.String(), "should not appear")

	EnableDebugFor(name)
	defer DisableDebugFor(name)
	l.Debugf("visible now")
	assert.Contains(t, buf.String(), "visible now")
}

func TestDebugGlobal(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_service_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	l.Debugf("global visible")
	assert.Contains(t, buf.String(), "global visible")
	assert.True(t, DebugEnabledFor("any_other_service"))
}

func TestLevels(t *testing.T) {
	l, buf := newTestLogger(t, "levels_service_test")

	l.Warnf("attention needed")
	l.Errorf("failure: %d", 42)

	out := buf.String()
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "attention needed")
	assert.Contains(t, out, "level=error")
	assert.Contains(t, out, "failure: 42")
}

func TestForServiceMemoizes(t *testing.T) {
	a := ForService("memo")
	b := ForService("memo")
	require.Same(t, a, b)

	unnamed := ForService("")
	assert.Equal(t, "unknown", unnamed.name)
}

func TestSetOutputAppliesToExistingLoggers(t *testing.T) {
	l := ForService("existing_logger_test")

	buf := &bytes.Buffer{}
	SetOutput(buf)
	l.Infof("after switch")

	assert.Contains(t, buf.String(), "after switch")

	SetOutput(nil)
	l.Infof("still here")
	assert.Contains(t, buf.String(), "still here")
}
