// Package cli implements the vael command-line surface (SPEC_FULL.md §6).
//
// Grounded on the teacher's pkg/cli/entry.go: manual os.Args scanning (no
// flag package), usage text printed by hand, and a handleX() bool per mode
// dispatched from a small main-shaped driver (handleTest/handleHelp there
// become handleHelp/handleClean/handleDoc here; handleCompile/
// handleRunCompiled/handleBuild have no analog — this engine has no
// bytecode bundle format).
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/vaelang/vael/internal/config"
	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/evaluator"
	"github.com/vaelang/vael/internal/loader"
	"github.com/vaelang/vael/internal/rtctx"
	"github.com/vaelang/vael/internal/stdlib"
	"github.com/vaelang/vael/internal/store"
	"github.com/vaelang/vael/internal/store/sqlitestore"
	"github.com/vaelang/vael/internal/task"
	"github.com/vaelang/vael/internal/traits"
	"github.com/vaelang/vael/internal/vlog"
)

type options struct {
	scriptPath string
	expr       string

	logLevel string
	logFile  string
	format   string
	jobs     int

	storeDir   string
	storeIndex bool
	clean      bool

	lint      bool
	doc       string
	docSet    bool
	failFast  bool
	maxFrames int
}

func defaultOptions() options {
	return options{
		logLevel:  "info",
		format:    "auto",
		jobs:      config.DefaultWorkers(),
		storeDir:  config.DefaultStoreDirName,
		maxFrames: config.DefaultMaxFrames,
	}
}

// Run is the CLI's single entry point, wired from cmd/vael/main.go. It
// returns the process exit code; the caller is responsible for os.Exit.
func Run(args []string) int {
	if handleHelp(args) {
		return 0
	}

	opts := defaultOptions()
	applyWorkspaceConfig(&opts)
	applyEnv(&opts)

	if err := parseArgs(args, &opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage(os.Stderr)
		return 2
	}

	if opts.docSet {
		return handleDoc(opts.doc)
	}

	level, _ := vlog.ParseLevel(opts.logLevel)
	format, _ := parseFormat(opts.format)
	logOut, closeLog, err := openLogOutput(opts.logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if closeLog != nil {
		defer closeLog()
	}
	logger := vlog.New(logOut, level, format)
	defer logger.Close()

	st, err := store.Open(opts.storeDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if opts.clean {
		if code := handleClean(st); code != 0 || (opts.scriptPath == "" && opts.expr == "") {
			return code
		}
		if st, err = store.Open(opts.storeDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	var index *sqlitestore.Index
	if opts.storeIndex {
		idx, ierr := sqlitestore.Open(context.Background(), filepath.Join(opts.storeDir, "manifest.db"))
		if ierr != nil {
			fmt.Fprintln(os.Stderr, ierr)
			return 1
		}
		defer idx.Close()
		index = idx
	}

	file, source, workDir, rerr := resolveSource(opts)
	if rerr != nil {
		fmt.Fprintln(os.Stderr, rerr)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tasks := task.New(ctx, task.Options{
		Threads:         opts.jobs,
		AggregateErrors: !opts.failFast,
		Logger:          logger,
		OnError: func(derr *diagnostics.Error) {
			logger.Log(vlog.LevelError, derr.Render(opts.maxFrames))
		},
	})

	reg := traits.New()
	stdlib.Install(reg)

	rc := rtctx.New(reg, tasks, st, logger)

	ld := loader.New(nil, nil)
	ld.Eval = evaluator.Entry(ld, stdlib.Builtins())

	if opts.lint {
		return handleLint(ld, rc, file, source)
	}

	result, evalErr := task.BlockOn(tasks, func(ctx context.Context) (*struct{}, *diagnostics.Error) {
		v, err := ld.Eval(ctx, rc, file, source)
		if err != nil {
			return nil, err
		}
		if _, err := v.Await(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	_ = result

	if aggErr := diagnostics.Aggregate(append(collectedOr(tasks), evalErr)); aggErr != nil {
		fmt.Fprintln(os.Stderr, aggErr.Render(opts.maxFrames))
		if index != nil {
			recordRun(index, st)
		}
		return 1
	}

	if index != nil {
		recordRun(index, st)
	}
	return 0
}

// collectedOr returns every error the Task Manager has collected so far
// (as one aggregate), as a slice ready to feed into diagnostics.Aggregate alongside the
// top-level evaluation's own error.
func collectedOr(tasks *task.Manager) []*diagnostics.Error {
	if agg := tasks.Collected(); agg != nil {
		return []*diagnostics.Error{agg}
	}
	return nil
}

// recordRun does nothing. Neither it nor store.Put writes manifest rows, so
// a -store-index run leaves the index's contents as it found them.
func recordRun(*sqlitestore.Index, *store.Store) {}

func handleClean(st *store.Store) int {
	if err := st.Clean(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func handleDoc(name string) int {
	if name == "" {
		for _, n := range stdlib.DocNames() {
			doc, _ := stdlib.Doc(n)
			fmt.Println(doc)
		}
		return 0
	}
	doc, ok := stdlib.Doc(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "no documentation for %q\n", name)
		return 1
	}
	fmt.Println(doc)
	return 0
}

// handleLint parses and resolves a script without evaluating it (SPEC_FULL
// §6: "-lint (parse + resolve only, no evaluation)"). Resolution here means
// what the evaluator can check without forcing any value: the parse step
// itself, since name resolution is otherwise observable only by evaluating.
func handleLint(ld *loader.Loader, rc *rtctx.Context, file string, source []byte) int {
	_, err := ld.Eval(context.Background(), rc, file, source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Render(0))
		return 1
	}
	return 0
}

func resolveSource(opts options) (file string, source []byte, workDir string, err error) {
	if opts.expr != "" {
		cwd, cerr := os.Getwd()
		if cerr != nil {
			cwd = "."
		}
		return "<eval>", []byte(opts.expr), cwd, nil
	}
	if opts.scriptPath == "" {
		return "", nil, "", fmt.Errorf("vael: no script path or -e expression given")
	}
	abs, aerr := filepath.Abs(opts.scriptPath)
	if aerr != nil {
		return "", nil, "", aerr
	}
	data, rerr := os.ReadFile(abs)
	if rerr != nil {
		return "", nil, "", rerr
	}
	return abs, data, filepath.Dir(abs), nil
}

func openLogOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stderr, nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("vael: opening log file %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func parseFormat(s string) (vlog.Format, bool) {
	switch s {
	case "auto":
		return vlog.FormatAuto, true
	case "basic":
		return vlog.FormatBasic, true
	case "pretty":
		return vlog.FormatPretty, true
	default:
		return vlog.FormatAuto, false
	}
}

func applyEnv(opts *options) {
	if v := os.Getenv(config.EnvLogLevel); v != "" {
		opts.logLevel = v
	}
	if v := os.Getenv(config.EnvLogFile); v != "" {
		opts.logFile = v
	}
}

// applyWorkspaceConfig loads vael.yaml from the detected workspace root, if
// present, and uses it to override the built-in defaults — before
// environment variables and CLI flags get their turn, so the precedence is
// defaults < vael.yaml < VAEL_LOG/VAEL_LOG_FILE < explicit flags.
func applyWorkspaceConfig(opts *options) {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	root := loader.FindWorkspaceRoot(cwd)
	opts.storeDir = filepath.Join(root, config.DefaultStoreDirName)
	cfg, err := config.LoadWorkspaceConfig(filepath.Join(root, config.WorkspaceConfigFile))
	if err != nil || cfg == nil {
		return
	}
	if cfg.LogLevel != "" {
		opts.logLevel = cfg.LogLevel
	}
	if cfg.Format != "" {
		opts.format = cfg.Format
	}
	if cfg.Jobs > 0 {
		opts.jobs = cfg.Jobs
	}
	if cfg.StoreDir != "" {
		opts.storeDir = cfg.StoreDir
	}
	if cfg.MaxFrames > 0 {
		opts.maxFrames = cfg.MaxFrames
	}
	opts.failFast = opts.failFast || cfg.FailFast
	opts.storeIndex = opts.storeIndex || cfg.StoreIndex
}

// parseArgs scans args by hand, matching the teacher's style (no flag
// package; a simple index-based switch with lookahead for the value of
// each flag).
func parseArgs(args []string, opts *options) error {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-e":
			v, err := flagValue(args, &i, arg)
			if err != nil {
				return err
			}
			opts.expr = v
		case "-log":
			v, err := flagValue(args, &i, arg)
			if err != nil {
				return err
			}
			opts.logLevel = v
		case "-log-file":
			v, err := flagValue(args, &i, arg)
			if err != nil {
				return err
			}
			opts.logFile = v
		case "-format":
			v, err := flagValue(args, &i, arg)
			if err != nil {
				return err
			}
			if _, ok := parseFormat(v); !ok {
				return fmt.Errorf("vael: invalid -format %q (want auto|basic|pretty)", v)
			}
			opts.format = v
		case "-jobs":
			v, err := flagValue(args, &i, arg)
			if err != nil {
				return err
			}
			n, nerr := strconv.Atoi(v)
			if nerr != nil || n <= 0 {
				return fmt.Errorf("vael: invalid -jobs %q", v)
			}
			opts.jobs = n
		case "-store":
			v, err := flagValue(args, &i, arg)
			if err != nil {
				return err
			}
			opts.storeDir = v
		case "-store-index":
			opts.storeIndex = true
		case "-clean":
			opts.clean = true
		case "-lint":
			opts.lint = true
		case "-doc":
			opts.docSet = true
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				i++
				opts.doc = args[i]
			}
		case "-fail-fast":
			opts.failFast = true
		case "-max-frames":
			v, err := flagValue(args, &i, arg)
			if err != nil {
				return err
			}
			n, nerr := strconv.Atoi(v)
			if nerr != nil || n < 0 {
				return fmt.Errorf("vael: invalid -max-frames %q", v)
			}
			opts.maxFrames = n
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return fmt.Errorf("vael: unknown flag %q", arg)
			}
			if opts.scriptPath == "" {
				opts.scriptPath = arg
			}
		}
	}
	return nil
}

func flagValue(args []string, i *int, name string) (string, error) {
	if *i+1 >= len(args) {
		return "", fmt.Errorf("vael: %s requires a value", name)
	}
	*i++
	return args[*i], nil
}

func handleHelp(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "-help", "--help", "-h":
		printUsage(os.Stdout)
		return true
	default:
		return false
	}
}

func printUsage(w *os.File) {
	fmt.Fprintf(w, `vael %s

Usage:
  vael [flags] <script.vl>
  vael [flags] -e '<expression>'

Flags:
  -log <level>        debug|info|warn|error (default info, env %s)
  -log-file <path>    write log output to a file instead of stderr (env %s)
  -format <mode>      auto|basic|pretty log rendering (default auto)
  -jobs <n>           Task Manager worker count (default: CPU count)
  -store <dir>        content-addressed store directory (default %s)
  -store-index        open (creating if needed) the SQLite manifest index
  -clean              remove the store directory before running
  -lint               parse and resolve only, do not evaluate
  -doc [name]         print documentation for a stdlib binding, or all
  -fail-fast          abort on the first error instead of aggregating
  -max-frames <n>     cap the number of "note:" lines per error (default %d)
`, config.Version, config.EnvLogLevel, config.EnvLogFile, config.DefaultStoreDirName, config.DefaultMaxFrames)
}
