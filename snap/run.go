// Copyright 2019, Maxim Lamare.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"

	"github.com/maximlamare/S3-extract/util"
)

// Runner invokes the SNAP graph processing tool on generated graph files
type Runner struct {
	GptPath string
	// CacheSize is the gpt tile cache, e.g. "1G". Empty leaves the default.
	CacheSize string
	// Parallelism is the gpt -q thread count. Zero leaves the default.
	Parallelism int
	// MaxMemory caps the JVM heap, e.g. "4G". Empty leaves the default.
	MaxMemory string
}

// NewRunner builds a runner configured from the environment
func NewRunner() Runner {
	return Runner{
		GptPath:   util.GetGptPath(),
		CacheSize: util.GetGptCacheSize(),
	}
}

// CheckInstalled stats the configured gpt executable so a missing SNAP
// install fails the run up front instead of once per scene
func (r Runner) CheckInstalled() error {
	if _, err := os.Stat(r.GptPath); err != nil {
		return fmt.Errorf("SNAP gpt not found at %s: install the SNAP toolbox or set %s", r.GptPath, util.S3EXTRACT_GPT)
	}
	return nil
}

var execCommand = exec.Command

// RunGraph executes one graph file, streaming the processor output into the
// log at sensible levels. Failures caused by the subset region missing the
// product come back flagged by IsOutOfBounds; failures that look transient
// come back flagged by IsTemporary.
func (r Runner) RunGraph(ctx util.LogContext, graphPath string) error {
	args := []string{graphPath, "-x"}
	if r.Parallelism > 0 {
		args = append(args, "-q", strconv.Itoa(r.Parallelism))
	}
	if r.CacheSize != "" {
		args = append(args, "-c", r.CacheSize)
	}
	if r.MaxMemory != "" {
		args = append(args, "-J-Xmx"+r.MaxMemory)
	}

	cmd := execCommand(r.GptPath, args...)
	commandLine := r.GptPath + " " + strings.Join(args, " ")
	util.LogAudit(ctx, util.LogAuditInput{Actor: "snap/RunGraph", Action: "exec", Actee: commandLine, Message: "Running the SNAP graph processing tool", Severity: util.INFO})

	filter := &logFilter{}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return (&util.Error{LogMsg: "Could not attach to gpt output: " + err.Error(), Command: commandLine}).Log(ctx, "RunGraph")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return (&util.Error{LogMsg: "Could not attach to gpt output: " + err.Error(), Command: commandLine}).Log(ctx, "RunGraph")
	}

	if err := cmd.Start(); err != nil {
		return (&util.Error{
			LogMsg:    "Could not start gpt: " + err.Error(),
			SimpleMsg: fmt.Sprintf("SNAP gpt could not be started from %s; set %s to the gpt executable", r.GptPath, util.S3EXTRACT_GPT),
			Command:   commandLine,
		}).Log(ctx, "RunGraph")
	}

	// gpt writes progress to stdout and the interesting lines to stderr
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		filter.relay(stdout, zapcore.DebugLevel)
	}()
	go func() {
		defer wg.Done()
		filter.relay(stderr, zapcore.InfoLevel)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		logged := (&util.Error{
			LogMsg:    "gpt exited with an error: " + err.Error(),
			SimpleMsg: "SNAP processing failed",
			Command:   commandLine,
			Output:    filter.LastError(),
		}).Log(ctx, "RunGraph")
		return classify(logged, filter.LastError())
	}
	return nil
}

func classify(err error, lastError string) error {
	switch {
	case strings.Contains(lastError, "No intersection"):
		return MakeOutOfBounds(err)
	case strings.Contains(lastError, "Try again"),
		strings.Contains(lastError, "Temporary failure"),
		strings.Contains(lastError, "Java heap space"),
		strings.Contains(lastError, "GC overhead limit"):
		return MakeTemporary(err)
	}
	return err
}

// logFilter re-levels the output of the SNAP JVM, which writes almost
// everything at alarming levels, and keeps the last real error line for
// reporting
type logFilter struct {
	mu        sync.Mutex
	lastError string
}

func (f *logFilter) relay(r io.Reader, defaultLevel zapcore.Level) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		f.log(scanner.Text(), defaultLevel)
	}
}

func (f *logFilter) log(message string, defaultLevel zapcore.Level) {
	level := defaultLevel
	trimmed := strings.TrimSpace(message)
	switch {
	case strings.HasPrefix(trimmed, "java.") && strings.Contains(trimmed, "Exception"):
		level = zapcore.WarnLevel
	case strings.HasPrefix(trimmed, "at "):
		level = zapcore.DebugLevel
	case strings.HasPrefix(trimmed, "INFO:"):
		level = zapcore.DebugLevel
	case strings.HasPrefix(trimmed, "-- org.jblas INFO"):
		level = zapcore.DebugLevel
	// SNAP reports routine auxdata chatter as SEVERE
	case strings.HasPrefix(trimmed, "SEVERE:"):
		level = zapcore.InfoLevel
	case strings.HasPrefix(trimmed, "WARNING:"):
		level = zapcore.WarnLevel
	case strings.HasPrefix(trimmed, "Error:"):
		level = zapcore.ErrorLevel
		f.mu.Lock()
		f.lastError = trimmed
		f.mu.Unlock()
	}
	util.Logger().Log(level, message)
}

// LastError returns the last line gpt flagged as an error, if any
func (f *logFilter) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastError
}
