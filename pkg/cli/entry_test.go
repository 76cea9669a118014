package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgsScriptPath(t *testing.T) {
	opts := defaultOptions()
	if err := parseArgs([]string{"script.vl"}, &opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.scriptPath != "script.vl" {
		t.Fatalf("expected scriptPath to be set, got %q", opts.scriptPath)
	}
}

func TestParseArgsFirstPositionalWins(t *testing.T) {
	opts := defaultOptions()
	if err := parseArgs([]string{"a.vl", "b.vl"}, &opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.scriptPath != "a.vl" {
		t.Fatalf("expected the first positional arg to win, got %q", opts.scriptPath)
	}
}

func TestParseArgsExpr(t *testing.T) {
	opts := defaultOptions()
	if err := parseArgs([]string{"-e", "1 + 1"}, &opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.expr != "1 + 1" {
		t.Fatalf("expected expr to be set, got %q", opts.expr)
	}
}

func TestParseArgsInvalidFormat(t *testing.T) {
	opts := defaultOptions()
	if err := parseArgs([]string{"-format", "xml"}, &opts); err == nil {
		t.Fatalf("expected an error for an unrecognized -format value")
	}
}

func TestParseArgsInvalidJobs(t *testing.T) {
	opts := defaultOptions()
	if err := parseArgs([]string{"-jobs", "0"}, &opts); err == nil {
		t.Fatalf("expected an error for -jobs 0")
	}
	if err := parseArgs([]string{"-jobs", "notanumber"}, &opts); err == nil {
		t.Fatalf("expected an error for a non-numeric -jobs value")
	}
}

func TestParseArgsUnknownFlagErrors(t *testing.T) {
	opts := defaultOptions()
	if err := parseArgs([]string{"-bogus"}, &opts); err == nil {
		t.Fatalf("expected an error for an unrecognized flag")
	}
}

func TestParseArgsDocConsumesFollowingNonFlagToken(t *testing.T) {
	// -doc looks ahead one token: anything not starting with '-' is taken
	// as the doc name, even a bare script path. `vael -doc script.vl`
	// means "show docs for the binding named script.vl", not "lint
	// script.vl and show the full doc index" — callers who want the full
	// index with a script argument must put -doc last.
	opts := defaultOptions()
	if err := parseArgs([]string{"-doc", "script.vl"}, &opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.docSet {
		t.Fatalf("expected docSet to be true")
	}
	if opts.doc != "script.vl" {
		t.Fatalf("expected -doc to consume the following token as the doc name, got %q", opts.doc)
	}
	if opts.scriptPath != "" {
		t.Fatalf("the token consumed by -doc must not also become the script path, got %q", opts.scriptPath)
	}
}

func TestParseArgsDocAtEndShowsFullIndex(t *testing.T) {
	opts := defaultOptions()
	if err := parseArgs([]string{"script.vl", "-doc"}, &opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.doc != "" {
		t.Fatalf("expected no doc name when -doc is the last argument, got %q", opts.doc)
	}
	if opts.scriptPath != "script.vl" {
		t.Fatalf("expected script.vl to be parsed as the script path, got %q", opts.scriptPath)
	}
}

func TestParseArgsDocWithName(t *testing.T) {
	opts := defaultOptions()
	if err := parseArgs([]string{"-doc", "print"}, &opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.doc != "print" {
		t.Fatalf("expected doc name 'print', got %q", opts.doc)
	}
}

func TestParseArgsFailFastAndFlags(t *testing.T) {
	opts := defaultOptions()
	if err := parseArgs([]string{"-fail-fast", "-store-index", "-clean", "-lint"}, &opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.failFast || !opts.storeIndex || !opts.clean || !opts.lint {
		t.Fatalf("expected all boolean flags set, got %+v", opts)
	}
}

func TestFlagValueMissingArgErrors(t *testing.T) {
	i := 0
	if _, err := flagValue([]string{"-log"}, &i, "-log"); err == nil {
		t.Fatalf("expected an error when the flag's value is missing")
	}
}

func TestApplyEnvOverridesDefaults(t *testing.T) {
	t.Setenv("VAEL_LOG", "debug")
	t.Setenv("VAEL_LOG_FILE", "/tmp/vael.log")
	opts := defaultOptions()
	applyEnv(&opts)
	if opts.logLevel != "debug" {
		t.Fatalf("expected VAEL_LOG to override logLevel, got %q", opts.logLevel)
	}
	if opts.logFile != "/tmp/vael.log" {
		t.Fatalf("expected VAEL_LOG_FILE to override logFile, got %q", opts.logFile)
	}
}

func TestResolveSourceExprMode(t *testing.T) {
	opts := defaultOptions()
	opts.expr = "42"
	file, source, _, err := resolveSource(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != "<eval>" || string(source) != "42" {
		t.Fatalf("unexpected resolveSource result: %q %q", file, source)
	}
}

func TestResolveSourceScriptMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.vl")
	if err := os.WriteFile(path, []byte("1"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := defaultOptions()
	opts.scriptPath = path
	file, source, workDir, err := resolveSource(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(source) != "1" {
		t.Fatalf("expected source '1', got %q", source)
	}
	if workDir != dir {
		t.Fatalf("expected workDir %q, got %q", dir, workDir)
	}
	if file != path {
		t.Fatalf("expected file %q, got %q", path, file)
	}
}

func TestResolveSourceNoInputErrors(t *testing.T) {
	opts := defaultOptions()
	if _, _, _, err := resolveSource(opts); err == nil {
		t.Fatalf("expected an error when neither -e nor a script path is given")
	}
}

func TestApplyWorkspaceConfigPrecedesEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vael.yaml"), []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cwd, _ := os.Getwd()
	defer os.Chdir(cwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Setenv("VAEL_LOG", "error")
	opts := defaultOptions()
	applyWorkspaceConfig(&opts)
	applyEnv(&opts)
	if opts.logLevel != "error" {
		t.Fatalf("env var must win over vael.yaml, got %q", opts.logLevel)
	}
}
