package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmdRejectsMissingType(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"-s", "4"})
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, errOut.String(), "please specify which table type")
}

func TestRootCmdRejectsNonPositiveSize(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"-t", "cuckoo", "-s", "0"})
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, errOut.String(), "please specify initial table size")
}

func TestRootCmdRunsInterpreter(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"-t", "cuckoo", "-s", "4"})
	cmd.SetIn(strings.NewReader("i 1\nq\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := cmd.Execute()
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "1 inserted")
}
