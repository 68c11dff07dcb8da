package cfront

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/cdecl/internal/ast"
)

// options is the subset of compiler arguments the frontend understands.
type options struct {
	quote  []string // -iquote
	angled []string // -I
	system []string // -isystem
	macros map[string]string
}

// flags that take a separate value and are otherwise ignored.
var ignoredWithValue = map[string]bool{
	"-x":       true,
	"-target":  true,
	"-include": true,
	"-arch":    true,
}

// parseArgs reads compiler arguments. Arguments the frontend cannot act on
// produce warnings; a search-path or macro flag missing its value is an
// error.
func parseArgs(args []string) (options, []ast.Diagnostic, bool) {
	o := options{macros: make(map[string]string)}
	var diags []ast.Diagnostic
	ok := true

	for i := 0; i < len(args); i++ {
		arg := args[i]

		flag, value, joined := splitArg(arg)
		if flag != "" && !joined {
			if i+1 >= len(args) {
				diags = append(diags, ast.Diagnostic{
					Severity: ast.SeverityError,
					Message:  fmt.Sprintf("argument to '%s' is missing (expected 1 value)", flag),
				})
				ok = false
				continue
			}
			i++
			value = args[i]
		}

		switch flag {
		case "-I":
			o.angled = append(o.angled, value)
			continue
		case "-iquote":
			o.quote = append(o.quote, value)
			continue
		case "-isystem":
			o.system = append(o.system, value)
			continue
		case "-D":
			name, v, found := strings.Cut(value, "=")
			if !found {
				v = "1"
			}
			o.macros[name] = v
			continue
		case "-U":
			delete(o.macros, value)
			continue
		}

		switch {
		case ignoredWithValue[arg]:
			i++
		case strings.HasPrefix(arg, "-std="),
			strings.HasPrefix(arg, "-W"),
			strings.HasPrefix(arg, "-f"),
			strings.HasPrefix(arg, "-m"),
			strings.HasPrefix(arg, "-O"),
			arg == "-g", arg == "-pedantic", arg == "-w":
		default:
			diags = append(diags, ast.Diagnostic{
				Severity: ast.SeverityWarning,
				Message:  fmt.Sprintf("argument unused during compilation: '%s'", arg),
			})
		}
	}
	return o, diags, ok
}

// splitArg recognises the search-path and macro flags in both their joined
// ("-Idir") and separate ("-I dir") forms.
func splitArg(arg string) (flag, value string, joined bool) {
	for _, f := range []string{"-isystem", "-iquote", "-I", "-D", "-U"} {
		if arg == f {
			return f, "", false
		}
		if strings.HasPrefix(arg, f) {
			return f, arg[len(f):], true
		}
	}
	return "", "", false
}

type searchDir struct {
	dir    string
	system bool
}

// resolve finds an included header. Quoted includes search the including
// file's directory and the -iquote list before -I and -isystem; angled
// includes search only -I and -isystem. Headers found under -isystem are
// system headers, and a quoted include next to a system header inherits its
// status.
func (o *options) resolve(name string, from *srcFile, angled bool) (string, bool, bool) {
	if filepath.IsAbs(name) {
		return name, from.system, fileExists(name)
	}

	var dirs []searchDir
	if !angled {
		dirs = append(dirs, searchDir{dir: from.dir, system: from.system})
		for _, d := range o.quote {
			dirs = append(dirs, searchDir{dir: d})
		}
	}
	for _, d := range o.angled {
		dirs = append(dirs, searchDir{dir: d})
	}
	for _, d := range o.system {
		dirs = append(dirs, searchDir{dir: d, system: true})
	}

	for _, d := range dirs {
		p := filepath.Join(d.dir, name)
		if fileExists(p) {
			return p, d.system, true
		}
	}
	return "", false, false
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
