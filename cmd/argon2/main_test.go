package main

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, strings.TrimSpace(stdout.String()), stderr.String()
}

func withPassword(t *testing.T, pw string) {
	t.Helper()
	t.Setenv(PasswordEnvVar, pw)
	t.Setenv("ARGON2_SECRET", "")
}

func Test_hash_verify_roundTrip(t *testing.T) {
	withPassword(t, "correct horse")

	code, digest, stderr := runCLI(t, "hash", "-m", "64", "-t", "1", "-p", "2")
	if code != exitOK {
		t.Fatalf("hash exit=%d stderr=%s", code, stderr)
	}
	if !regexp.MustCompile(`^\$argon2id\$v=19\$m=64,t=1,p=2\$`).MatchString(digest) {
		t.Fatalf("unexpected digest %q", digest)
	}

	code, out, _ := runCLI(t, "verify", digest)
	if code != exitOK || out != "match" {
		t.Fatalf("verify: exit=%d out=%q", code, out)
	}

	withPassword(t, "wrong password")
	code, out, _ = runCLI(t, "verify", digest)
	if code != exitMismatch || out != "mismatch" {
		t.Fatalf("verify wrong: exit=%d out=%q", code, out)
	}
}

func Test_hash_fixedSaltIsDeterministic(t *testing.T) {
	withPassword(t, "pw")
	args := []string{"hash", "-algorithm", "argon2d", "-version", "0x10", "-m", "32", "-t", "1", "-p", "1", "-salt", "MDEyMzQ1Njc4OWFiY2RlZg=="}

	_, d1, _ := runCLI(t, args...)
	_, d2, _ := runCLI(t, args...)
	if d1 == "" || d1 != d2 {
		t.Fatalf("digests differ: %q vs %q", d1, d2)
	}
	if !strings.HasPrefix(d1, "$argon2d$v=16$m=32,t=1,p=1$MDEyMzQ1Njc4OWFiY2RlZg$") {
		t.Fatalf("unexpected digest %q", d1)
	}
}

func Test_secret(t *testing.T) {
	withPassword(t, "pw")
	code, digest, _ := runCLI(t, "hash", "-m", "32", "-t", "1", "-p", "1", "-secret", "cGVwcGVy")
	if code != exitOK {
		t.Fatalf("hash exit=%d", code)
	}
	if code, _, _ := runCLI(t, "verify", "-secret", "cGVwcGVy", digest); code != exitOK {
		t.Fatalf("verify with secret: exit=%d", code)
	}
	if code, _, _ := runCLI(t, "verify", digest); code != exitMismatch {
		t.Fatalf("verify without secret: exit=%d", code)
	}

	t.Setenv("ARGON2_SECRET", "cGVwcGVy")
	if code, _, _ := runCLI(t, "verify", digest); code != exitOK {
		t.Fatalf("verify with env secret: exit=%d", code)
	}
}

func Test_envDefaults(t *testing.T) {
	withPassword(t, "pw")
	t.Setenv("ARGON2_ALGORITHM", "argon2i")
	t.Setenv("ARGON2_M_COST", "48")
	t.Setenv("ARGON2_T_COST", "1")

	code, digest, stderr := runCLI(t, "hash")
	if code != exitOK {
		t.Fatalf("hash exit=%d stderr=%s", code, stderr)
	}
	if !strings.HasPrefix(digest, "$argon2i$v=19$m=48,t=1,p=1$") {
		t.Fatalf("unexpected digest %q", digest)
	}

	// Flags take precedence over the environment.
	_, digest, _ = runCLI(t, "hash", "-algorithm", "argon2id")
	if !strings.HasPrefix(digest, "$argon2id$v=19$m=48,t=1,p=1$") {
		t.Fatalf("unexpected digest %q", digest)
	}
}

func Test_errors(t *testing.T) {
	withPassword(t, "pw")
	cases := [][]string{
		{},
		{"bogus"},
		{"hash", "-algorithm", "bcrypt"},
		{"hash", "-version", "18"},
		{"hash", "-m", "4"},
		{"hash", "-salt", "!!"},
		{"hash", "-salt", "c2FsdA"}, // 4 bytes
		{"hash", "-secret", "not base64!"},
		{"verify"},
		{"verify", "argon2id$v=19"},
		{"verify", "$argon2x$v=19$m=32,t=1,p=1$c29tZXNhbHQ"},
		{"info", "nope"},
	}
	for _, args := range cases {
		if code, _, _ := runCLI(t, args...); code != exitError {
			t.Errorf("%v: exit=%d, want %d", args, code, exitError)
		}
	}
}

func Test_memoryLimit(t *testing.T) {
	withPassword(t, "pw")
	t.Setenv("ARGON2_MAX_MEMORY_KIB", "64")
	t.Setenv("ARGON2_M_COST", "64")

	if code, _, stderr := runCLI(t, "hash", "-m", "128"); code != exitError {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}
	if code, _, stderr := runCLI(t, "hash", "-m", "64", "-t", "1"); code != exitOK {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}
}

func Test_info(t *testing.T) {
	code, out, _ := runCLI(t, "info", "$argon2i$v=19$m=65536,t=2,p=1$c29tZXNhbHQ$wWKIMhR9lyDFvRz9YTZweHKfbftvj+qf+YFY4NeBbtA")
	if code != exitOK {
		t.Fatalf("exit=%d", code)
	}
	var got struct {
		Driver string         `json:"driver"`
		Params map[string]any `json:"params"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("json: %v (%s)", err, out)
	}
	if got.Driver != "argon2i" || got.Params["memory"] != float64(65536) || got.Params["key_len"] != float64(32) {
		t.Fatalf("unexpected info %+v", got)
	}
}

func Test_version(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	if code != exitOK || !strings.HasPrefix(out, "argon2 dev") {
		t.Fatalf("exit=%d out=%q", code, out)
	}
}

func Test_saltBytes(t *testing.T) {
	s, err := saltBytes("")
	if err != nil || len(s) != 16 {
		t.Fatalf("random salt: len=%d err=%v", len(s), err)
	}
	s, err = saltBytes("c29tZXNhbHQ")
	if err != nil || string(s) != "somesalt" {
		t.Fatalf("decoded salt: %q err=%v", s, err)
	}
}
