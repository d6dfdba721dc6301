package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/vtable/compiler"
	verrors "github.com/wippyai/vtable/errors"
)

const shapesSource = `package shapes;

interface base {
	a: func(self, arg1: u32) -> bool default false;
	b: unsafe func(self, arg1: ptr<u8>, arg2: u32) -> bool;
}

interface derived: base {
	c: func(mut self) -> usize;
}
`

const reorderedSource = `package shapes;

interface base {
	b: unsafe func(self, arg1: ptr<u8>, arg2: u32) -> bool;
	a: func(self, arg1: u32) -> bool default false;
}

interface derived: base {
	c: func(mut self) -> usize;
}
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// project writes a config file so that runs do not pick up one from the
// working directory.
func project(t *testing.T, src string) (dir, cfgPath, input string) {
	t.Helper()
	dir = t.TempDir()
	input = writeFile(t, filepath.Join(dir, "api", "shapes.vtl"), src)
	cfgPath = writeFile(t, filepath.Join(dir, "vtablegen.toml"), `
[generate]
inputs = ["api/shapes.vtl"]
out = "gen"
languages = ["go", "cxx"]
data-model = "lp64"

[lock]
path = "shapes.vtlock"
`)
	return dir, cfgPath, input
}

func TestRun_Generate(t *testing.T) {
	dir, cfgPath, _ := project(t, shapesSource)

	var stdout, stderr bytes.Buffer
	if err := run(&stdout, &stderr, options{configPath: cfgPath}); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"shapes_vtable.go", "shapes_vtable.h"} {
		if _, err := os.Stat(filepath.Join(dir, "gen", name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
		if !strings.Contains(stdout.String(), name) {
			t.Errorf("stdout does not mention %s: %s", name, stdout.String())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "shapes.vtlock")); err != nil {
		t.Errorf("lock not written: %v", err)
	}

	stdout.Reset()
	if err := run(&stdout, &stderr, options{configPath: cfgPath, check: true}); err != nil {
		t.Errorf("check after generate: %v", err)
	}
}

func TestRun_Drift(t *testing.T) {
	dir, cfgPath, input := project(t, shapesSource)
	var stdout, stderr bytes.Buffer
	if err := run(&stdout, &stderr, options{configPath: cfgPath}); err != nil {
		t.Fatal(err)
	}

	writeFile(t, input, reorderedSource)
	before, _ := os.ReadFile(filepath.Join(dir, "gen", "shapes_vtable.go"))

	err := run(&stdout, &stderr, options{configPath: cfgPath, check: true})
	if !errors.Is(err, &verrors.Error{Phase: verrors.PhaseVerify, Kind: verrors.KindDrift}) {
		t.Fatalf("check error = %v", err)
	}
	after, _ := os.ReadFile(filepath.Join(dir, "gen", "shapes_vtable.go"))
	if !bytes.Equal(before, after) {
		t.Error("-check rewrote generated output")
	}

	// Without enforcement drift is a warning and the lock follows the source.
	stderr.Reset()
	if err := run(&stdout, &stderr, options{configPath: cfgPath}); err != nil {
		t.Fatalf("unenforced run: %v", err)
	}
	if !strings.Contains(stderr.String(), `slot "a" moved`) {
		t.Errorf("no drift warning: %s", stderr.String())
	}
	if err := run(&stdout, &stderr, options{configPath: cfgPath, check: true}); err != nil {
		t.Errorf("lock not updated: %v", err)
	}
}

func TestRun_Overrides(t *testing.T) {
	dir, cfgPath, input := project(t, shapesSource)
	out := filepath.Join(dir, "other")
	lockDir := filepath.Join(dir, "locks")

	var stdout, stderr bytes.Buffer
	opts := options{
		configPath: cfgPath,
		inputs:     []string{input},
		out:        out,
		lang:       "cxx",
		model:      "ilp32",
		lock:       lockDir,
	}
	if err := run(&stdout, &stderr, opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	header, err := os.ReadFile(filepath.Join(out, "shapes_vtable.h"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(header), "UINTPTR_MAX == 0xFFFFFFFFu") {
		t.Error("header not generated for ilp32")
	}
	if _, err := os.Stat(filepath.Join(out, "shapes_vtable.go")); !os.IsNotExist(err) {
		t.Error("go output written despite -lang cxx")
	}
	if _, err := os.Stat(filepath.Join(lockDir, "shapes.vtlock")); err != nil {
		t.Errorf("lock directory not used: %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	_, cfgPath, input := project(t, shapesSource)
	bad := writeFile(t, filepath.Join(filepath.Dir(input), "bad.vtl"), `package bad;
interface x<T> { f: func(self); }
interface y: a + b { g: func(self); }
`)

	tests := []struct {
		name string
		opts options
		kind verrors.Kind
	}{
		{"shape errors", options{configPath: cfgPath, inputs: []string{bad}}, verrors.KindShape},
		{"missing input", options{configPath: cfgPath, inputs: []string{"nope.vtl"}}, verrors.KindIO},
		{"bad model", options{configPath: cfgPath, model: "lp128"}, verrors.KindInvalidInput},
		{"bad language", options{configPath: cfgPath, lang: "rust"}, verrors.KindUnsupported},
		{"check without lock", options{configPath: cfgPath, check: true}, verrors.KindNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(&stdout, &stderr, tc.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			var ve *verrors.Error
			if !errors.As(err, &ve) || ve.Kind != tc.kind {
				t.Errorf("error = %v, want kind %s", err, tc.kind)
			}
		})
	}
}

func TestDump(t *testing.T) {
	_, cfgPath, _ := project(t, shapesSource)
	var stdout, stderr bytes.Buffer
	if err := run(&stdout, &stderr, options{configPath: cfgPath, dump: true}); err != nil {
		t.Fatal(err)
	}
	got := stdout.String()
	for _, want := range []string{
		"shapes.derived : shapes.base  (lp64, size 24, align 8)",
		"shapes.base  (lp64, size 16, align 8)",
		"OFFSET",
		`extern "C" func(this: mutref<T>) -> usize`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dump lacks %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\x1b[") {
		t.Error("plain dump contains escape sequences")
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowser(t *testing.T) {
	_, _, input := project(t, shapesSource)
	b := newBrowser([]string{input}, compiler.DefaultABI, compiler.LP64)

	if !strings.Contains(b.View(), "Compiling") {
		t.Error("view before compile")
	}
	b.Update(b.Init()())
	if len(b.items) != 2 {
		t.Fatalf("items = %+v", b.items)
	}

	b.Update(key("down"))
	if _, u := b.current(); u == nil || u.Name != "derived" || u.Size != 24 {
		t.Fatalf("selected = %+v", u)
	}

	// lp64 -> llp64 -> ilp32
	b.Update(key("right"))
	b.Update(key("right"))
	pkg, u := b.current()
	if pkg.Model != compiler.ILP32 || u.Size != 12 {
		t.Errorf("model %s size %d", pkg.Model, u.Size)
	}
	if !strings.Contains(b.View(), "ilp32, size 12") {
		t.Error("view does not show the ilp32 layout")
	}

	b.Update(key("/"))
	for _, r := range "bas" {
		b.Update(key(string(r)))
	}
	b.Update(key("enter"))
	if len(b.items) != 1 || b.items[0].full != "shapes.base" || b.selected != 0 {
		t.Errorf("filtered = %+v, selected %d", b.items, b.selected)
	}

	if _, cmd := b.Update(key("q")); cmd == nil {
		t.Error("q does not quit")
	}
}
