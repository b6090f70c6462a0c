package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestEnvInt(t *testing.T) {
	t.Setenv("STASH_TEST_INT", "7")
	got, err := envInt("STASH_TEST_INT", 1)
	if err != nil {
		t.Fatalf("envInt() error = %v", err)
	}
	if got != 7 {
		t.Errorf("envInt() = %d, want 7", got)
	}

	for _, bad := range []string{"seven", "1O", ""} {
		t.Setenv("STASH_TEST_INT", bad)
		if _, err := envInt("STASH_TEST_INT", 1); err == nil {
			t.Errorf("envInt() with %q should return error", bad)
		}
	}

	if got, err := envInt("STASH_TEST_UNSET", 3); err != nil || got != 3 {
		t.Errorf("envInt() unset = %d, %v; want 3, nil", got, err)
	}
	if got := envString("STASH_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("envString() = %q, want %q", got, "fallback")
	}
}

func TestValidateFlags_MalformedRedisDB(t *testing.T) {
	prevErr, prevDB := redisDBEnvErr, redisDB
	t.Cleanup(func() { redisDBEnvErr, redisDB = prevErr, prevDB })

	t.Setenv("STASH_TEST_DB", "abc")
	_, redisDBEnvErr = envInt("STASH_TEST_DB", 0)
	redisDB = 0

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "")

	if err := validateFlags(cmd, nil); err == nil {
		t.Fatal("validateFlags() should reject a malformed STASH_REDIS_DB")
	}

	// An explicit flag overrides the environment.
	if err := cmd.Flags().Set("redis-db", "2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := validateFlags(cmd, nil); err != nil {
		t.Errorf("validateFlags() with explicit --redis-db error = %v", err)
	}
}

func TestValidateFlags_NegativeRedisDB(t *testing.T) {
	prevErr, prevDB := redisDBEnvErr, redisDB
	t.Cleanup(func() { redisDBEnvErr, redisDB = prevErr, prevDB })
	redisDBEnvErr = nil

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "")
	cmd.Flags().Set("redis-db", "-1")

	if err := validateFlags(cmd, nil); err == nil {
		t.Error("validateFlags() should reject a negative database")
	}
}

func TestDemo_MalformedRedisDBFailsBeforeConnecting(t *testing.T) {
	prevErr, prevAddr := redisDBEnvErr, redisAddr
	t.Cleanup(func() {
		redisDBEnvErr, redisAddr = prevErr, prevAddr
		rootCmd.SetArgs(nil)
	})

	t.Setenv("STASH_TEST_DB", "1O")
	_, redisDBEnvErr = envInt("STASH_TEST_DB", 0)

	// Nothing listens here; reaching openCache would fail differently.
	rootCmd.SetArgs([]string{"demo", "--redis-addr", "127.0.0.1:1"})
	err := rootCmd.Execute()
	if err == nil || err.Error() != redisDBEnvErr.Error() {
		t.Errorf("Execute() error = %v, want %v", err, redisDBEnvErr)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw, typ string
		want     any
		wantErr  bool
	}{
		{"hello", "string", "hello", false},
		{"42", "int", 42, false},
		{"3.5", "float", 3.5, false},
		{"x", "int", nil, true},
		{"x", "bool", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.raw, func(t *testing.T) {
			got, err := parseValue(tt.raw, tt.typ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseValue() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseValue() = %#v, want %#v", got, tt.want)
			}
		})
	}

	b, err := parseValue("raw", "bytes")
	if err != nil {
		t.Fatalf("parseValue() error = %v", err)
	}
	if string(b.([]byte)) != "raw" {
		t.Errorf("parseValue() = %q, want %q", b, "raw")
	}
}

func TestNewCodec(t *testing.T) {
	for _, name := range []string{"none", "zstd", "gzip"} {
		cd, err := newCodec(name)
		if err != nil {
			t.Fatalf("newCodec(%q) error = %v", name, err)
		}
		if cd.Name() != name {
			t.Errorf("newCodec(%q).Name() = %q", name, cd.Name())
		}
	}

	if _, err := newCodec("lz4"); err == nil {
		t.Error("newCodec() with unknown name should return error")
	}
}
