package cli

import (
	"testing"
)

func TestLogConfig_Scan(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantLevel  logLevel
		wantFormat logFormat
		wantPretty bool
		wantCaller bool
	}{
		{
			name:       "defaults",
			args:       []string{"eval", "a.b"},
			wantFormat: "json",
			wantLevel:  "info",
			wantPretty: true,
		},
		{
			name:       "separate_values",
			args:       []string{"eval", "--log-level", "trace", "--log-format", "text", "a"},
			wantLevel:  "trace",
			wantFormat: "text",
			wantPretty: true,
		},
		{
			name:       "assigned_values",
			args:       []string{"--log-level=debug", "--log-format=text"},
			wantLevel:  "debug",
			wantFormat: "text",
			wantPretty: true,
		},
		{
			name:       "negated_booleans",
			args:       []string{"--no-log-pretty", "--log-caller"},
			wantLevel:  "info",
			wantFormat: "json",
			wantCaller: true,
		},
		{
			name:       "assigned_booleans",
			args:       []string{"--log-pretty=false", "--no-log-caller=false"},
			wantLevel:  "info",
			wantFormat: "json",
			wantCaller: true,
		},
		{
			name:       "invalid_boolean_ignored",
			args:       []string{"--log-pretty=maybe"},
			wantLevel:  "info",
			wantFormat: "json",
			wantPretty: true,
		},
		{
			name:       "flag_value_not_consumed",
			args:       []string{"--log-level", "--log-caller"},
			wantLevel:  "",
			wantFormat: "json",
			wantPretty: true,
			wantCaller: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Level: "info", Format: "json", Pretty: true}
			f.scan(tt.args)

			if f.Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", f.Level, tt.wantLevel)
			}

			if f.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", f.Format, tt.wantFormat)
			}

			if f.Pretty != tt.wantPretty {
				t.Errorf("Pretty = %v, want %v", f.Pretty, tt.wantPretty)
			}

			if f.Caller != tt.wantCaller {
				t.Errorf("Caller = %v, want %v", f.Caller, tt.wantCaller)
			}
		})
	}
}

func TestLogConfig_Vars(t *testing.T) {
	vars := (&logConfig{}).vars()

	if got := vars["logLevelEnum"]; got != "trace,debug,info,warn,error" {
		t.Errorf("logLevelEnum = %q", got)
	}

	if got := vars["logFormatEnum"]; got != "json,text" {
		t.Errorf("logFormatEnum = %q", got)
	}
}
