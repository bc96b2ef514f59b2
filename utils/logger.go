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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

// LogOptions configures every logger created by NewLogger.
type LogOptions struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"` // text or json
	FileEnabled bool   `mapstructure:"file_enabled"`
	Dir         string `mapstructure:"dir"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*logrus.Logger{}

	optionsMu sync.RWMutex
	options   = LogOptions{
		Level:       EnvDefaultString("LOG_LEVEL", "info"),
		Format:      EnvDefaultString("LOG_FORMAT", "text"),
		FileEnabled: EnvDefaultBool("FILE_LOG_ENABLED", false),
		Dir:         "logs",
	}
	output io.Writer = os.Stdout
)

// ConfigureLogging replaces the global options and re-applies them to every
// registered logger.
func ConfigureLogging(opts LogOptions) {
	optionsMu.Lock()
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	options = opts
	optionsMu.Unlock()

	registryMu.RLock()
	defer registryMu.RUnlock()
	for name, l := range registry {
		apply(name, l)
	}
}

// SetOutput redirects console output of all loggers.
func SetOutput(w io.Writer) {
	optionsMu.Lock()
	output = w
	optionsMu.Unlock()

	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, l := range registry {
		l.SetOutput(w)
	}
}

// NewLogger returns the named logger, creating and registering it on first use.
func NewLogger(name string) *logrus.Logger {
	registryMu.Lock()
	defer registryMu.Unlock()
	if l, ok := registry[name]; ok {
		return l
	}
	l := logrus.New()
	l.SetReportCaller(true)
	apply(name, l)
	registry[name] = l
	return l
}

// SetLoggerLevel changes the level of a single registered logger.
func SetLoggerLevel(name string, level string) bool {
	registryMu.RLock()
	l, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return false
	}
	l.SetLevel(ParseLogLevel(level))
	return true
}

func apply(name string, l *logrus.Logger) {
	optionsMu.RLock()
	opts, w := options, output
	optionsMu.RUnlock()

	l.SetOutput(w)
	l.SetLevel(ParseLogLevel(opts.Level))
	l.SetFormatter(newFormatter(name, opts.Format, true))
	l.ReplaceHooks(make(logrus.LevelHooks))
	if opts.FileEnabled {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log dir %s: %v\n", opts.Dir, err)
			return
		}
		l.AddHook(&fileHook{
			writer:    &dailyWriter{dir: opts.Dir, maxAgeDays: opts.MaxAgeDays},
			formatter: newFormatter(name, opts.Format, false),
		})
	}
}

func newFormatter(name, format string, color bool) logrus.Formatter {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return &JSONLogFormatter{LoggerName: name}
	}
	return &TextLogFormatter{LoggerName: name, Color: color}
}

// ParseLogLevel maps a level name to a logrus level, defaulting to info.
func ParseLogLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// TextLogFormatter renders log4j style lines:
// time LEVEL pid --- [name] file:line : message k=v
type TextLogFormatter struct {
	LoggerName string
	Color      bool
}

func (f *TextLogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	lvl := fmt.Sprintf("%5s", strings.ToUpper(e.Level.String()))
	if f.Color {
		lvl = levelColor(e.Level) + lvl + ansiReset
	}
	fmt.Fprintf(&b, "%s %s %-6d --- [%10s]", e.Time.Format(timestampFormat), lvl, os.Getpid(), limit(f.LoggerName, 10))
	if e.Caller != nil {
		fmt.Fprintf(&b, " %s:%d", shortPath(e.Caller.File), e.Caller.Line)
	}
	b.WriteString(" : ")
	b.WriteString(e.Message)
	for k, v := range e.Data {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// JSONLogFormatter emits one JSON object per line. Request fields set by the
// HTTP access log middleware are promoted to top level keys.
type JSONLogFormatter struct {
	LoggerName string
}

var promoted = map[string]bool{
	"req_uri": true, "req_method": true, "client_ip": true, "status_code": true, "latency_time": true,
}

func (f *JSONLogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	data := make(logrus.Fields, len(e.Data)+5)
	fields := logrus.Fields{}
	for k, v := range e.Data {
		if promoted[k] {
			data[k] = v
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		fields[k] = v
	}
	if len(fields) > 0 {
		data["fields"] = fields
	}
	data["time"] = e.Time.Format(timestampFormat)
	data["level"] = e.Level.String()
	data["logger"] = f.LoggerName
	data["message"] = e.Message
	if e.Caller != nil {
		data["caller"] = fmt.Sprintf("%s:%d", shortPath(e.Caller.File), e.Caller.Line)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(b, '\n'), nil
}

type fileHook struct {
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}

// dailyWriter appends to <dir>/<yyyy-mm-dd>.log and prunes files older than
// maxAgeDays whenever the date rolls over. maxAgeDays <= 0 keeps everything.
type dailyWriter struct {
	dir        string
	maxAgeDays int

	mu   sync.Mutex
	date string
	file *os.File
}

func (w *dailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	today := time.Now().Format("2006-01-02")
	if w.file == nil || w.date != today {
		if w.file != nil {
			_ = w.file.Close()
		}
		f, err := os.OpenFile(filepath.Join(w.dir, today+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		w.file, w.date = f, today
		w.prune()
	}
	return w.file.Write(p)
}

func (w *dailyWriter) prune() {
	if w.maxAgeDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -w.maxAgeDays)
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSuffix(e.Name(), ".log"), time.Local)
		if err == nil && d.Before(cutoff) {
			_ = os.Remove(filepath.Join(w.dir, e.Name()))
		}
	}
}

const ansiReset = "\x1b[0m"

func levelColor(level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return "\x1b[31m"
	case logrus.WarnLevel:
		return "\x1b[33m"
	case logrus.InfoLevel:
		return "\x1b[32m"
	case logrus.DebugLevel:
		return "\x1b[34m"
	default:
		return "\x1b[35m"
	}
}

func limit(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// shortPath keeps the package directory and file name of a caller path.
func shortPath(p string) string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return p
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		default:
			return false
		}
	}
	return def
}
