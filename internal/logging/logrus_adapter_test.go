package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(l), &buf
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.Debug("hidden")
	logger.Info("row imported", F(FieldRow, 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "row imported")
	assert.Contains(t, out, "row=3")
}

func TestLogrusAdapter_DerivedFields(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.
		WithField(FieldRunID, "abc").
		WithFields(F(FieldFile, "card.csv"), F(FieldCount, 2)).
		WithError(errors.New("disk full")).
		Error("commit failed")

	out := buf.String()
	assert.Contains(t, out, "commit failed")
	assert.Contains(t, out, "run_id=abc")
	assert.Contains(t, out, "file_path=card.csv")
	assert.Contains(t, out, "disk full")
}

func TestNewLogrusAdapterWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "JSON", &buf)

	logger.Debug("decoded", F(FieldEncoding, "shift_jis"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "decoded", decoded["msg"])
	assert.Equal(t, "shift_jis", decoded[FieldEncoding])
	assert.Equal(t, "debug", decoded["level"])
}

func TestNewLogrusAdapterWithOutput_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("loud", "text", &buf)

	logger.Debug("not shown")
	logger.Info("shown")

	out := buf.String()
	assert.Contains(t, out, "Invalid log level 'loud'")
	assert.NotContains(t, out, "not shown")
	assert.Contains(t, out, "shown")
}

func TestConvertFields(t *testing.T) {
	fields := convertFields([]Field{F("a", 1), F("b", "x"), F("a", 2)})
	assert.Len(t, fields, 2)
	assert.Equal(t, 2, fields["a"])
	assert.Equal(t, "x", fields["b"])
	assert.Empty(t, convertFields(nil))
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	assert.NotPanics(t, func() {
		logger.WithField("k", "v").Error("dropped")
	})
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
