package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emptydir/internal/database"
	"emptydir/internal/exitcodes"
)

// isolate points every default location at a temp dir
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))
	return home
}

func workTree(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "anchor.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	root := filepath.Join(base, "root")
	if err := os.MkdirAll(filepath.Join(root, "a", "__pycache__"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "keep.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestRunDeletesAndSummarises(t *testing.T) {
	home := isolate(t)
	root := workTree(t)

	var out, errOut bytes.Buffer
	if err := run(&options{noColor: true}, []string{root}, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := filepath.Join(root, "a", "__pycache__") + "\n" +
		filepath.Join(root, "a") + "\n" +
		"2 directories deleted\n"
	if out.String() != want {
		t.Errorf("stdout = %q, want %q", out.String(), want)
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr %q", errOut.String())
	}

	dbPath := filepath.Join(home, ".local", "state", "emptydir", "history.db")
	db, err := database.NewHistoryDB(dbPath)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer db.Close()
	runs, err := db.GetRecentRuns(10)
	if err != nil || len(runs) != 1 || runs[0].Deleted != 2 {
		t.Errorf("expected one recorded run with 2 deletions, got %+v (err %v)", runs, err)
	}
}

func TestRunNoOpExplainsRoot(t *testing.T) {
	isolate(t)
	root := workTree(t)

	var out, errOut bytes.Buffer
	opts := &options{noColor: true, noHistory: true}
	if err := run(opts, []string{root}, &out, &errOut); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out.Reset()
	errOut.Reset()

	if err := run(opts, []string{root}, &out, &errOut); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if out.String() != "no empty directories found\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "contains 1 entry:\n  - keep.txt") {
		t.Errorf("stderr should explain the kept root, got %q", errOut.String())
	}
}

func TestRunWithConfig(t *testing.T) {
	home := isolate(t)
	root := workTree(t)
	textfile := filepath.Join(home, "emptydir.prom")

	cfgPath := filepath.Join(home, "config.yaml")
	cfg := "database_path: \"-\"\n" +
		"metrics_textfile: " + textfile + "\n" +
		"protected_paths:\n  - " + filepath.Join(root, "a") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	if err := run(&options{configPath: cfgPath, noColor: true}, []string{root}, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasSuffix(out.String(), "1 directory deleted\n") {
		t.Errorf("protected directory should survive, got %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(root, "a")); err != nil {
		t.Errorf("protected directory removed: %v", err)
	}

	data, err := os.ReadFile(textfile)
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	if !strings.Contains(string(data), "emptydir_dirs_deleted_total") {
		t.Error("textfile missing deletion counter")
	}
	if _, err := os.Stat(filepath.Join(home, ".local", "state", "emptydir", "history.db")); !errors.Is(err, os.ErrNotExist) {
		t.Error("history database created although disabled")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	home := isolate(t)
	cfgPath := filepath.Join(home, "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("unknown_key: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := run(&options{configPath: cfgPath}, []string{home}, &bytes.Buffer{}, &bytes.Buffer{})
	if got := exitCode(err); got != exitcodes.InvalidConfig {
		t.Errorf("exit code = %d, want %d (err %v)", got, exitcodes.InvalidConfig, err)
	}

	err = run(&options{configPath: filepath.Join(home, "missing.yaml")}, nil, &bytes.Buffer{}, &bytes.Buffer{})
	if got := exitCode(err); got != exitcodes.InvalidConfig {
		t.Errorf("missing explicit config: exit code = %d, want %d", got, exitcodes.InvalidConfig)
	}
}

func TestRunHistoryOpenFailure(t *testing.T) {
	home := isolate(t)
	blocker := filepath.Join(home, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(home, "config.yaml")
	cfg := "database_path: " + filepath.Join(blocker, "history.db") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	err := run(&options{configPath: cfgPath}, []string{home}, &bytes.Buffer{}, &bytes.Buffer{})
	if got := exitCode(err); got != exitcodes.RuntimeError {
		t.Errorf("exit code = %d, want %d (err %v)", got, exitcodes.RuntimeError, err)
	}
}

func TestTooManyArgs(t *testing.T) {
	isolate(t)
	cmd := newRootCmd()
	cmd.SetArgs([]string{"a", "b"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected an error for two roots")
	}
	if got := exitCode(err); got != exitcodes.InvalidArgs {
		t.Errorf("exit code = %d, want %d", got, exitcodes.InvalidArgs)
	}
}

func TestResolveRoot(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	got, err := resolveRoot(nil)
	if err != nil || got != wd {
		t.Errorf("resolveRoot(nil) = %q, %v; want %q", got, err, wd)
	}
	got, err = resolveRoot([]string{"sub/../x"})
	if err != nil || got != filepath.Join(wd, "x") {
		t.Errorf("resolveRoot(sub/../x) = %q, %v", got, err)
	}
	if _, err := resolveRoot([]string{""}); err == nil {
		t.Error("empty root should be rejected")
	}
}
