package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/desertthunder/igsync/internal/services"
	"github.com/desertthunder/igsync/internal/shared"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			states := services.NewStateStore(0)

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				States: states,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.states != states {
				t.Error("expected state store to be set")
			}
		})

		t.Run("with defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config")
			}
			if runner.logger == nil {
				t.Error("expected default logger")
			}
			if runner.output == nil {
				t.Error("expected default output")
			}
			if runner.states == nil {
				t.Error("expected default state store")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if !strings.Contains(output.String(), `"key":"value"`) {
			t.Errorf("unexpected output: %s", output.String())
		}

		output.Reset()
		if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
			t.Fatalf("pretty writeJSON failed: %v", err)
		}
		if !strings.Contains(output.String(), "  \"key\": \"value\"") {
			t.Errorf("expected indented output, got: %s", output.String())
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatalf("writePlain failed: %v", err)
		}
		if output.String() != "hello world\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := make(map[string]bool)
		for _, c := range commands {
			names[c.Name] = true
		}

		for _, want := range []string{"setup", "link", "sync", "account", "export", "serve"} {
			if !names[want] {
				t.Errorf("expected %s command registered", want)
			}
		}
	})
}

func TestCallbackAddr(t *testing.T) {
	cases := []struct {
		name     string
		redirect string
		want     string
		wantErr  bool
	}{
		{"explicit port", "http://localhost:8080/api/instagram/callback", "localhost:8080", false},
		{"default http port", "http://localhost/cb", "localhost:80", false},
		{"default https port", "https://example.com/cb", "example.com:443", false},
		{"no host", "not a url at all ://", "", true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := callbackAddr(tt.redirect)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("callbackAddr(%s) = %s, want %s", tt.redirect, got, tt.want)
			}
		})
	}
}
