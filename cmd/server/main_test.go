package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "status"},
		{"user", "create-admin"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not registered: %v", path, err)
		}
	}
}

func TestCreateAdminRequiresFlags(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"user", "create-admin", "--username", "root"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "are required") {
		t.Fatalf("expected missing flag error, got %v", err)
	}
}

func TestReportFailure(t *testing.T) {
	var buf bytes.Buffer
	reportFailure(&buf, errors.New("DATABASE_URL is required"))
	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "DATABASE_URL is required") {
		t.Errorf("unexpected log line: %s", out)
	}
}
