// Command check_boundaries verifies the import rules of the voting modules:
// a module never imports another module, and its domain and application
// layers stay free of adapters and runtime infrastructure.
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const modulePath = "voteflow"

// pkgInfo describes one package directory under contexts/.
type pkgInfo struct {
	Dir    string // slash path relative to the repository root
	Module string // import prefix of the owning module
	Layer  string
}

type importRef struct {
	Path string
	File string
	Line int
}

type rule struct {
	Name   string
	Breaks func(pkg pkgInfo, importPath string) bool
}

type violation struct {
	Pkg    string
	File   string
	Line   int
	Import string
	Rule   string
}

var rules = []rule{
	{
		Name: "cross-module import",
		Breaks: func(pkg pkgInfo, importPath string) bool {
			return within(importPath, modulePath+"/contexts") && !within(importPath, pkg.Module)
		},
	},
	{
		Name: "inner layer imports adapters",
		Breaks: func(pkg pkgInfo, importPath string) bool {
			return innerLayer(pkg.Layer) && strings.Contains(importPath, "/adapters/")
		},
	},
	{
		Name: "inner layer imports runtime infrastructure",
		Breaks: func(pkg pkgInfo, importPath string) bool {
			return innerLayer(pkg.Layer) &&
				(within(importPath, modulePath+"/internal") || within(importPath, modulePath+"/cmd"))
		},
	},
	{
		Name: "domain imports outside its module domain",
		Breaks: func(pkg pkgInfo, importPath string) bool {
			return pkg.Layer == "domain" && !isStdlib(importPath) && !within(importPath, pkg.Module+"/domain")
		},
	},
}

func main() {
	violations, err := check("contexts")
	if err != nil {
		fmt.Fprintln(os.Stderr, "boundary check failed:", err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}
	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// check loads every non-test package below root and applies the rules to
// its imports. Results are ordered by file and line.
func check(root string) ([]violation, error) {
	pkgs, err := discover(root)
	if err != nil {
		return nil, err
	}
	var violations []violation
	for _, pkg := range pkgs {
		imports, err := loadImports(filepath.Join(filepath.Dir(root), filepath.FromSlash(pkg.Dir)))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", pkg.Dir, err)
		}
		for _, imp := range imports {
			for _, r := range rules {
				if r.Breaks(pkg, imp.Path) {
					violations = append(violations, violation{
						Pkg:    pkg.Dir,
						File:   pkg.Dir + "/" + imp.File,
						Line:   imp.Line,
						Import: imp.Path,
						Rule:   r.Name,
					})
				}
			}
		}
	}
	slices.SortFunc(violations, func(a, b violation) int {
		if a.File != b.File {
			return strings.Compare(a.File, b.File)
		}
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return strings.Compare(a.Rule, b.Rule)
	})
	return violations, nil
}

// discover returns the package directories of contexts/<context>/<module>/<layer>/...
func discover(root string) ([]pkgInfo, error) {
	base := filepath.Dir(root)
	var pkgs []pkgInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return nil
		}
		info := pkgInfo{
			Dir:    strings.Join(parts, "/"),
			Module: modulePath + "/" + strings.Join(parts[:3], "/"),
		}
		if len(parts) > 3 {
			info.Layer = parts[3]
		}
		pkgs = append(pkgs, info)
		return nil
	})
	return pkgs, err
}

func loadImports(dir string) ([]importRef, error) {
	fset := token.NewFileSet()
	notTest := func(fi fs.FileInfo) bool { return !strings.HasSuffix(fi.Name(), "_test.go") }
	parsed, err := parser.ParseDir(fset, dir, notTest, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}
	var refs []importRef
	for _, pkg := range parsed {
		for name, file := range pkg.Files {
			for _, spec := range file.Imports {
				path, err := strconv.Unquote(spec.Path.Value)
				if err != nil {
					return nil, err
				}
				refs = append(refs, importRef{
					Path: path,
					File: filepath.Base(name),
					Line: fset.Position(spec.Pos()).Line,
				})
			}
		}
	}
	return refs, nil
}

func innerLayer(layer string) bool {
	return layer == "domain" || layer == "application"
}

func within(importPath string, prefix string) bool {
	return importPath == prefix || strings.HasPrefix(importPath, prefix+"/")
}

// isStdlib treats any path whose first element has no dot as standard library.
func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".") && first != modulePath
}
