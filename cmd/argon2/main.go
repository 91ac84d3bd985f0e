// Command argon2 hashes and verifies Argon2 password digests, natively or
// through the wasm module.
//
//	argon2 hash [flags]            print a new digest
//	argon2 verify [flags] DIGEST   exit 0 on match, 1 on mismatch, 2 on error
//	argon2 info DIGEST             print the parameters embedded in DIGEST
//
// The password is read from ARGON2_PASSWORD or, failing that, from the
// terminal. Defaults come from the ARGON2_* environment, see
// internal/config.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hasbyte1/go-argon2-wasm/hashing"
	"github.com/hasbyte1/go-argon2-wasm/internal/config"
	"github.com/hasbyte1/go-argon2-wasm/internal/keys"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitMismatch = 1
	exitError    = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage:
  argon2 hash [-algorithm argon2id] [-version 19] [-m KiB] [-t passes] [-p lanes]
              [-salt BASE64] [-secret BASE64] [-wasm FILE] [-debug]
  argon2 verify [-secret BASE64] [-wasm FILE] [-debug] DIGEST
  argon2 info DIGEST
  argon2 version`)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitError
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return exitError
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "argon2 %s (%s)\n", version, buildDate)
		return exitOK
	case "hash":
		return runHash(ctx, cfg, args[1:], stdout, stderr)
	case "verify":
		return runVerify(ctx, cfg, args[1:], stdout, stderr)
	case "info":
		return runInfo(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return exitError
	}
}

// common holds the flags shared by hash and verify.
type common struct {
	secret string
	wasm   string
	debug  bool
}

func (c *common) register(fs *flag.FlagSet, cfg config.Config) {
	fs.StringVar(&c.secret, "secret", os.Getenv("ARGON2_SECRET"), "secret key, base64 (default $ARGON2_SECRET)")
	fs.StringVar(&c.wasm, "wasm", cfg.WasmPath, "run through the wasm module at this path")
	fs.BoolVar(&c.debug, "debug", false, "debug logging")
}

func runHash(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs, cfg)
	algorithm := fs.String("algorithm", string(cfg.Hashing.Driver), "argon2i, argon2d or argon2id")
	ver := fs.String("version", fmt.Sprint(cfg.Hashing.Version), "16 (0x10) or 19 (0x13)")
	m := fs.Uint("m", uint(cfg.Hashing.Memory), "memory cost in KiB")
	t := fs.Uint("t", uint(cfg.Hashing.Time), "time cost (passes)")
	p := fs.Uint("p", uint(cfg.Hashing.Threads), "parallelism (lanes)")
	saltFlag := fs.String("salt", "", "salt, base64 (default 16 random bytes)")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	log := newLogger(stderr, c.debug)
	defer func() { _ = log.Sync() }()

	v, err := config.ParseVersion(*ver)
	if err != nil {
		log.Error("invalid -version", zap.Error(err))
		return exitError
	}
	policy, err := hashing.NewConfig(hashing.DriverName(*algorithm), v, uint32(*m), uint32(*t), uint32(*p))
	if err != nil {
		log.Error("invalid policy", zap.Error(err))
		return exitError
	}
	secret, err := keys.DecodeSecret(c.secret)
	if err != nil {
		log.Error("invalid -secret", zap.Error(err))
		return exitError
	}
	salt, err := saltBytes(*saltFlag)
	if err != nil {
		log.Error("invalid -salt", zap.Error(err))
		return exitError
	}
	password, err := getPassword("Password: ")
	if err != nil {
		log.Error("read password", zap.Error(err))
		return exitError
	}
	defer zeroBytes(password)

	b, err := openBackend(ctx, cfg, c.wasm, log)
	if err != nil {
		log.Error("open backend", zap.Error(err))
		return exitError
	}
	defer func() { _ = b.Close(ctx) }()

	if err := b.Configure(ctx, policy); err != nil {
		log.Error("configure", zap.Error(err))
		return exitError
	}
	digest, err := b.Hash(ctx, password, salt, secret)
	if err != nil {
		log.Error("hash", zap.Error(err))
		return exitError
	}
	log.Debug("hashed",
		zap.String("driver", string(policy.Driver)),
		zap.Uint32("m", policy.Memory),
		zap.Uint32("t", policy.Time),
		zap.Uint32("p", policy.Threads),
		zap.Bool("keyed", secret != nil),
	)
	fmt.Fprintln(stdout, digest)
	return exitOK
}

func runVerify(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 1 {
		usage(stderr)
		return exitError
	}
	digest := fs.Arg(0)

	log := newLogger(stderr, c.debug)
	defer func() { _ = log.Sync() }()

	secret, err := keys.DecodeSecret(c.secret)
	if err != nil {
		log.Error("invalid -secret", zap.Error(err))
		return exitError
	}
	password, err := getPassword("Password: ")
	if err != nil {
		log.Error("read password", zap.Error(err))
		return exitError
	}
	defer zeroBytes(password)

	b, err := openBackend(ctx, cfg, c.wasm, log)
	if err != nil {
		log.Error("open backend", zap.Error(err))
		return exitError
	}
	defer func() { _ = b.Close(ctx) }()

	ok, err := b.Verify(ctx, digest, password, secret)
	if err != nil {
		log.Error("verify", zap.Error(err))
		return exitError
	}
	if !ok {
		fmt.Fprintln(stdout, "mismatch")
		return exitMismatch
	}
	fmt.Fprintln(stdout, "match")
	return exitOK
}

func runInfo(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		usage(stderr)
		return exitError
	}
	info, err := hashing.NewStore().Info(args[0])
	if err != nil {
		fmt.Fprintln(stderr, "info:", err)
		return exitError
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"driver": info.Driver,
		"params": info.Params,
	}); err != nil {
		fmt.Fprintln(stderr, "info:", err)
		return exitError
	}
	return exitOK
}

func saltBytes(encoded string) ([]byte, error) {
	if encoded == "" {
		return keys.Salt()
	}
	salt, err := keys.DecodeKey(encoded)
	if err != nil {
		return nil, err
	}
	if len(salt) == 0 {
		return nil, errors.New("empty salt")
	}
	return salt, nil
}

func newLogger(w io.Writer, debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core)
}
