package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/vtable"
	"github.com/wippyai/vtable/codegen"
	"github.com/wippyai/vtable/compiler"
	"github.com/wippyai/vtable/config"
	verrors "github.com/wippyai/vtable/errors"
	"github.com/wippyai/vtable/idl"
	"github.com/wippyai/vtable/manifest"
)

// lockExt marks a -lock value as a single file rather than a directory.
const lockExt = ".vtlock"

type options struct {
	configPath  string
	out         string
	lang        string
	pkg         string
	model       string
	abi         string
	lock        string
	inputs      []string
	check       bool
	dump        bool
	interactive bool
	verbose     bool
}

var log = zap.NewNop()

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to "+config.FileName+" (default: search upwards from the working directory)")
	flag.StringVar(&opts.out, "out", "", "Output directory")
	flag.StringVar(&opts.lang, "lang", "", "Languages to generate, comma-separated ("+strings.Join(codegen.Languages(), ", ")+")")
	flag.StringVar(&opts.pkg, "pkg", "", "Go package name of the generated file")
	flag.StringVar(&opts.model, "model", "", "Data model (lp64, llp64, ilp32, wasm32; default: host)")
	flag.StringVar(&opts.abi, "abi", "", "Calling convention of methods without extern")
	flag.StringVar(&opts.lock, "lock", "", "ABI lock file, or a directory holding one lock per package")
	flag.BoolVar(&opts.check, "check", false, "Compare against the lock and exit without writing")
	flag.BoolVar(&opts.dump, "dump", false, "Print slot layouts and exit")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive layout browser")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: vtablegen [flags] [file.vtl ...]")
		fmt.Fprintln(os.Stderr, "       vtablegen -dump shapes.vtl")
		fmt.Fprintln(os.Stderr, "       vtablegen -check -lock shapes.vtlock shapes.vtl")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.inputs = flag.Args()

	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			setLogger(l)
		}
	}

	err := run(os.Stdout, os.Stderr, opts)
	_ = log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setLogger(l *zap.Logger) {
	log = l
	compiler.SetLogger(l.Named("compiler"))
	codegen.SetLogger(l.Named("codegen"))
	vtable.SetLogger(l.Named("vtable"))
}

func run(stdout, stderr io.Writer, opts options) error {
	cfg, inputs, err := resolve(opts)
	if err != nil {
		return err
	}

	if opts.interactive {
		return runInteractive(inputs, cfg)
	}

	pkgs, err := compileAll(inputs, cfg.Generate.DefaultABI, cfg.Model())
	if err != nil {
		return err
	}

	if opts.dump {
		fmt.Fprint(stdout, dump(pkgs, isTerminal(stdout)))
		return nil
	}

	locks, err := checkLocks(stderr, pkgs, cfg, opts.check)
	if err != nil {
		return err
	}
	if opts.check {
		fmt.Fprintf(stdout, "%d package(s) match their locks\n", len(pkgs))
		return nil
	}

	gens, err := generators(cfg)
	if err != nil {
		return err
	}
	out := cfg.Path(cfg.Generate.Out)
	for _, pkg := range pkgs {
		paths, err := codegen.Write(pkg, gens, out, codegenOptions(cfg))
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(stdout, "wrote %s\n", p)
		}
	}

	for path, l := range locks {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return verrors.Wrap(verrors.PhaseVerify, verrors.KindIO, err, "create "+filepath.Dir(path))
		}
		if err := manifest.Save(path, l); err != nil {
			return err
		}
		log.Debug("saved lock", zap.String("path", path), zap.String("package", l.Package))
	}
	return nil
}

// resolve loads the configuration and applies flag overrides. Paths given
// on the command line are relative to the working directory.
func resolve(opts options) (*config.Config, []string, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}

	abs := func(p string) string {
		if a, err := filepath.Abs(p); err == nil {
			return a
		}
		return p
	}
	g := &cfg.Generate
	if opts.out != "" {
		g.Out = abs(opts.out)
	}
	if opts.lang != "" {
		g.Languages = strings.Split(opts.lang, ",")
	}
	if opts.pkg != "" {
		g.GoPackage = opts.pkg
	}
	if opts.model != "" {
		g.DataModel = opts.model
	}
	if opts.abi != "" {
		g.DefaultABI = opts.abi
	}
	if opts.lock != "" {
		cfg.Lock.Path = abs(opts.lock)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	inputs := cfg.InputPaths()
	if len(opts.inputs) > 0 {
		inputs = opts.inputs
	}
	if len(inputs) == 0 {
		return nil, nil, verrors.InvalidInput(verrors.PhaseConfig, "no input files")
	}
	return cfg, inputs, nil
}

// compileAll parses and compiles every input, collecting all errors.
func compileAll(inputs []string, abi string, model compiler.DataModel) ([]*compiler.Package, error) {
	var pkgs []*compiler.Package
	var errs error
	for _, in := range inputs {
		f, err := idl.ParseFile(in)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		pkg, err := compiler.Compile(f, compiler.Options{DefaultABI: abi, Model: model})
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	if errs != nil {
		return nil, errs
	}
	return pkgs, nil
}

func codegenOptions(cfg *config.Config) codegen.Options {
	return codegen.Options{
		GoPackage:  cfg.Generate.GoPackage,
		HeaderName: cfg.Generate.HeaderName,
	}
}

func generators(cfg *config.Config) ([]codegen.Generator, error) {
	opts := codegenOptions(cfg)
	var gens []codegen.Generator
	var errs error
	for _, lang := range cfg.Generate.Languages {
		g, err := codegen.New(lang, opts)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		gens = append(gens, g)
	}
	return gens, errs
}

// lockPath returns where pkg's lock lives, or "" when locking is off.
func lockPath(cfg *config.Config, pkg *compiler.Package) string {
	p := cfg.Path(cfg.Lock.Path)
	if p == "" || strings.HasSuffix(p, lockExt) {
		return p
	}
	return filepath.Join(p, pkg.Name+lockExt)
}

// checkLocks compares each package with its lock and returns the locks to
// save. Drift is fatal when the lock is enforced or strict is set; otherwise
// it is reported as a warning and the lock is rewritten. In strict mode a
// missing lock is an error.
func checkLocks(stderr io.Writer, pkgs []*compiler.Package, cfg *config.Config, strict bool) (map[string]*manifest.Lock, error) {
	locks := make(map[string]*manifest.Lock)
	var errs error
	for _, pkg := range pkgs {
		path := lockPath(cfg, pkg)
		if path == "" {
			if strict {
				errs = multierr.Append(errs, verrors.InvalidInput(verrors.PhaseVerify, "-check needs a lock path"))
			}
			continue
		}
		if _, dup := locks[path]; dup {
			errs = multierr.Append(errs, verrors.New(verrors.PhaseVerify, verrors.KindDuplicate).
				Value(path).
				Detail("packages share lock file %s", path).
				Build())
			continue
		}

		cur := manifest.FromPackage(pkg)
		locks[path] = cur
		prev, err := manifest.Load(path)
		if err != nil {
			if !strict && errors.Is(err, &verrors.Error{Phase: verrors.PhaseVerify, Kind: verrors.KindNotFound}) {
				continue
			}
			errs = multierr.Append(errs, err)
			continue
		}

		drift := manifest.Check(prev, cur)
		if drift == nil {
			continue
		}
		if strict || cfg.Lock.Enforce {
			errs = multierr.Append(errs, drift)
			continue
		}
		for _, d := range multierr.Errors(drift) {
			fmt.Fprintf(stderr, "warning: %s: %v\n", path, d)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return locks, nil
}
