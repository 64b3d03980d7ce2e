package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Format: "json", Output: &buf})

	l.Debug("hidden")
	l.Infof("%s", "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestDisabledLevelWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "disabled", Format: "json", Output: &buf})

	l.Infof("nothing")
	l.Warnf("still %s", "nothing")

	assert.Empty(t, buf.String())
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "debug", Format: "json", Output: &buf}).With("input", "schema.yml")

	ctx := l.WithContext(context.Background())
	FromContext(ctx).Debug("from context")

	assert.Contains(t, buf.String(), `"input":"schema.yml"`)
	assert.Contains(t, buf.String(), "from context")
}

func TestFromContextWithoutLoggerIsNop(t *testing.T) {
	assert.NotPanics(t, func() {
		FromContext(context.Background()).Infof("dropped")
	})
}
