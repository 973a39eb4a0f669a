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

package util

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error carries both an operator-facing log message and a simpler
// user-facing one. Scene and command fields are included when known.
type Error struct {
	LogMsg    string
	SimpleMsg string
	Scene     string
	Command   string
	Output    string
}

// Error implements the error interface, preferring the user-facing message
func (e *Error) Error() string {
	if e.SimpleMsg != "" {
		return e.SimpleMsg
	}
	return e.LogMsg
}

// Log writes the detailed form of the error to the log and returns e so the
// caller can hand the plain form up the stack
func (e *Error) Log(ctx LogContext, prefix string) error {
	message := e.LogMsg
	if prefix != "" {
		message = prefix + ": " + message
	}
	fields := ""
	if e.Scene != "" {
		fields += fmt.Sprintf("; scene: %s", e.Scene)
	}
	if e.Command != "" {
		fields += fmt.Sprintf("; command: %s", e.Command)
	}
	if e.Output != "" {
		fields += fmt.Sprintf("; output: %s", e.Output)
	}
	LogAlert(ctx, message+fields)
	return e
}

// HTTPErr is the JSON body written for failed HTTP requests
type HTTPErr struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// HTTPError logs the failure and writes an HTTPErr body with the given code
func HTTPError(r *http.Request, w http.ResponseWriter, ctx LogContext, message string, code int) {
	LogAudit(ctx, LogAuditInput{
		Actor:    r.RemoteAddr,
		Action:   r.Method,
		Actee:    r.URL.String(),
		Message:  message,
		Severity: WARNING,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body, _ := json.Marshal(HTTPErr{Status: code, Message: message})
	w.Write(body)
}
