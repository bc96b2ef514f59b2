/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogFormatterPromotesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	ConfigureLogging(LogOptions{Level: "debug", Format: "json"})
	defer ConfigureLogging(LogOptions{Level: "info", Format: "text"})

	l := NewLogger("TEST-JSON")
	l.WithFields(logrus.Fields{"req_method": "GET", "status_code": 200, "user_id": 7}).Info("handled")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "handled", rec["message"])
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "TEST-JSON", rec["logger"])
	assert.Equal(t, "GET", rec["req_method"])
	assert.EqualValues(t, 200, rec["status_code"])
	assert.Equal(t, map[string]interface{}{"user_id": float64(7)}, rec["fields"])
	assert.Contains(t, rec["caller"], "utils/logger_test.go")
}

func TestTextLogFormatterAndLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	ConfigureLogging(LogOptions{Level: "warn", Format: "text"})
	defer ConfigureLogging(LogOptions{Level: "info", Format: "text"})

	l := NewLogger("TEST-TEXT")
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "[ TEST-TEXT]")

	require.True(t, SetLoggerLevel("TEST-TEXT", "debug"))
	l.Debug("now visible")
	assert.True(t, strings.Contains(buf.String(), "now visible"))
	assert.False(t, SetLoggerLevel("missing", "debug"))
}

func TestNewLoggerReturnsRegisteredInstance(t *testing.T) {
	assert.Same(t, NewLogger("SAME"), NewLogger("SAME"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel(" warning "))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("nonsense"))
}

func TestDailyWriterCreatesFile(t *testing.T) {
	dir := t.TempDir()
	w := &dailyWriter{dir: dir, maxAgeDays: 1}
	require.NoError(t, os.WriteFile(dir+"/2000-01-01.log", []byte("old"), 0o644))

	_, err := w.Write([]byte("line\n"))
	require.NoError(t, err)
	defer w.file.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, w.date+".log", entries[0].Name())
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("TODO_TEST_BOOL", "yes")
	t.Setenv("TODO_TEST_STR", "value")
	assert.True(t, EnvDefaultBool("TODO_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("TODO_TEST_UNSET", true))
	assert.Equal(t, "value", EnvDefaultString("TODO_TEST_STR", "x"))
	assert.Equal(t, "x", EnvDefaultString("TODO_TEST_UNSET", "x"))
}
