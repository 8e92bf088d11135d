package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/riskibarqy/mix-league/internal/platform/logging"
)

type fakeMigrator struct {
	upErr      error
	steps      int
	target     uint
	forced     int
	version    uint
	dirty      bool
	versionErr error
}

func (f *fakeMigrator) Up() error { return f.upErr }

func (f *fakeMigrator) Steps(n int) error {
	f.steps = n
	return nil
}

func (f *fakeMigrator) Migrate(v uint) error {
	f.target = v
	return nil
}

func (f *fakeMigrator) Force(v int) error {
	f.forced = v
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}

func TestParseSteps(t *testing.T) {
	t.Parallel()

	if got, err := parseSteps(nil); err != nil || got != 1 {
		t.Fatalf("expected default of 1 step, got %d (%v)", got, err)
	}
	if got, err := parseSteps([]string{" 3 "}); err != nil || got != 3 {
		t.Fatalf("expected 3 steps, got %d (%v)", got, err)
	}
	for _, raw := range []string{"0", "-2", "x"} {
		if _, err := parseSteps([]string{raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	t.Parallel()

	if v, err := parseVersion("2"); err != nil || v != 2 {
		t.Fatalf("unexpected version: %d (%v)", v, err)
	}
	if _, err := parseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if v, err := parseTarget("1"); err != nil || v != 1 {
		t.Fatalf("unexpected target: %d (%v)", v, err)
	}
	if _, err := parseTarget("-1"); err == nil {
		t.Fatalf("expected error for negative target")
	}
}

func TestCommands(t *testing.T) {
	t.Parallel()

	logger := logging.NewNop()

	t.Run("up without changes succeeds", func(t *testing.T) {
		t.Parallel()
		if err := runUp(&fakeMigrator{upErr: migrate.ErrNoChange}, nil, nil, logger); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("down reverses steps", func(t *testing.T) {
		t.Parallel()
		m := &fakeMigrator{}
		if err := runDown(m, []string{"2"}, nil, logger); err != nil || m.steps != -2 {
			t.Fatalf("unexpected down: steps=%d err=%v", m.steps, err)
		}
	})

	t.Run("version without migrations", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		if err := runVersion(&fakeMigrator{versionErr: migrate.ErrNilVersion}, nil, &out, logger); err != nil {
			t.Fatalf("version: %v", err)
		}
		if !strings.Contains(out.String(), "version: none") {
			t.Fatalf("unexpected output: %q", out.String())
		}
	})

	t.Run("version prints dirty flag", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		if err := runVersion(&fakeMigrator{version: 2, dirty: true}, nil, &out, logger); err != nil {
			t.Fatalf("version: %v", err)
		}
		if out.String() != "version: 2\ndirty: true\n" {
			t.Fatalf("unexpected output: %q", out.String())
		}
	})

	t.Run("force and goto require an argument", func(t *testing.T) {
		t.Parallel()
		if err := runForce(&fakeMigrator{}, nil, nil, logger); !errors.Is(err, errUsage) {
			t.Fatalf("expected usage error, got %v", err)
		}
		if err := runGoto(&fakeMigrator{}, nil, nil, logger); !errors.Is(err, errUsage) {
			t.Fatalf("expected usage error, got %v", err)
		}
	})

	t.Run("goto migrates to target", func(t *testing.T) {
		t.Parallel()
		m := &fakeMigrator{}
		if err := runGoto(m, []string{"1"}, nil, logger); err != nil || m.target != 1 {
			t.Fatalf("unexpected goto: target=%d err=%v", m.target, err)
		}
	})

	t.Run("force sets version", func(t *testing.T) {
		t.Parallel()
		m := &fakeMigrator{}
		if err := runForce(m, []string{"2"}, nil, logger); err != nil || m.forced != 2 {
			t.Fatalf("unexpected force: version=%d err=%v", m.forced, err)
		}
	})
}

func TestRun_UnknownCommandIsUsageError(t *testing.T) {
	t.Parallel()

	if err := run(nil, nil, logging.NewNop()); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run([]string{"sideways"}, nil, logging.NewNop()); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestDatabaseURL(t *testing.T) {
	t.Parallel()

	if _, err := databaseURL(" "); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := databaseURL("host=localhost dbname=mix_league"); err == nil {
		t.Fatalf("expected error for key=value dsn")
	}
	if got, err := databaseURL("postgres://u:p@localhost:5432/mix_league"); err != nil || got == "" {
		t.Fatalf("unexpected result: %q (%v)", got, err)
	}
}

func TestResolveMigrationsDir_PrefersOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := resolveMigrationsDir("", dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
