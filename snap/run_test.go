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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maximlamare/S3-extract/util"
)

// writeFakeGpt drops a shell script standing in for the gpt executable
func writeFakeGpt(t *testing.T, script string) string {
	path := filepath.Join(t.TempDir(), "gpt")
	assert.Nil(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func TestRunGraph_Success(t *testing.T) {
	// Mock
	runner := Runner{GptPath: writeFakeGpt(t, "echo 'Executing processing graph'\nexit 0")}

	// Tested code
	err := runner.RunGraph(&util.BasicLogContext{}, "graph.xml")

	// Asserts
	assert.Nil(t, err, "Expected the graph run to succeed; got: %v", err)
}

func TestRunGraph_Failure(t *testing.T) {
	// Mock
	runner := Runner{GptPath: writeFakeGpt(t, "echo 'Error: something broke' 1>&2\nexit 1")}

	// Tested code
	err := runner.RunGraph(&util.BasicLogContext{}, "graph.xml")

	// Asserts
	assert.NotNil(t, err)
	assert.Equal(t, "SNAP processing failed", err.Error())
	assert.False(t, IsOutOfBounds(err))
	assert.False(t, IsTemporary(err))
}

func TestRunGraph_OutOfBounds(t *testing.T) {
	// Mock
	runner := Runner{GptPath: writeFakeGpt(t,
		"echo 'Error: No intersection with source product boundary subset' 1>&2\nexit 1")}

	// Tested code
	err := runner.RunGraph(&util.BasicLogContext{}, "graph.xml")

	// Asserts
	assert.NotNil(t, err)
	assert.True(t, IsOutOfBounds(err))
	assert.False(t, IsTemporary(err))
}

func TestRunGraph_Temporary(t *testing.T) {
	// Mock
	runner := Runner{GptPath: writeFakeGpt(t,
		"echo 'Error: java.net.UnknownHostException: Temporary failure in name resolution' 1>&2\nexit 1")}

	// Tested code
	err := runner.RunGraph(&util.BasicLogContext{}, "graph.xml")

	// Asserts
	assert.NotNil(t, err)
	assert.True(t, IsTemporary(err))
	assert.False(t, IsOutOfBounds(err))
}

func TestRunGraph_MissingBinary(t *testing.T) {
	// Mock
	runner := Runner{GptPath: filepath.Join(t.TempDir(), "missing-gpt")}

	// Tested code
	err := runner.RunGraph(&util.BasicLogContext{}, "graph.xml")

	// Asserts
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), util.S3EXTRACT_GPT)
}

func TestCheckInstalled(t *testing.T) {
	// Mock
	good := Runner{GptPath: writeFakeGpt(t, "exit 0")}
	bad := Runner{GptPath: filepath.Join(t.TempDir(), "missing-gpt")}

	// Tested code & Asserts
	assert.Nil(t, good.CheckInstalled())
	assert.NotNil(t, bad.CheckInstalled())
}

func TestClassify(t *testing.T) {
	// Mock
	base := errors.New("gpt exited with an error")

	// Tested code & Asserts
	assert.True(t, IsOutOfBounds(classify(base, "Error: No intersection with source product boundary")))
	assert.True(t, IsTemporary(classify(base, "Error: Try again later")))
	assert.True(t, IsTemporary(classify(base, "Error: java.lang.OutOfMemoryError: Java heap space")))
	plain := classify(base, "Error: Operator 'Idepix.Sentinel3.Olci.S3Snow' not found")
	assert.False(t, IsOutOfBounds(plain))
	assert.False(t, IsTemporary(plain))
}

func TestLogFilter_LastError(t *testing.T) {
	// Mock
	filter := &logFilter{}

	// Tested code
	filter.log("INFO: loading auxdata", 0)
	filter.log("Error: first failure", 0)
	filter.log("WARNING: retrying", 0)
	filter.log("Error: second failure", 0)

	// Asserts: the latest error line wins
	assert.Equal(t, "Error: second failure", filter.LastError())
}

func TestErrorWrappers(t *testing.T) {
	// Mock
	base := errors.New("boom")

	// Tested code & Asserts
	assert.True(t, IsTemporary(MakeTemporary(base)))
	assert.True(t, IsOutOfBounds(MakeOutOfBounds(base)))
	assert.False(t, IsTemporary(base))
	assert.False(t, IsOutOfBounds(base))
	assert.Equal(t, "boom", MakeTemporary(base).Error())
}
