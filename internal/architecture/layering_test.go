package architecture_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

const modulesPrefix = "peaklab/internal/modules/"

var layers = []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"}

type goFile struct {
	path    string
	imports []string
}

// sources returns every non-test Go file below root with its imports.
func sources(t *testing.T, root string) []goFile {
	t.Helper()
	fset := token.NewFileSet()
	var out []goFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		f := goFile{path: filepath.ToSlash(path)}
		for _, imp := range node.Imports {
			f.imports = append(f.imports, strings.Trim(imp.Path.Value, `"`))
		}
		out = append(out, f)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return out
}

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	for _, f := range sources(t, filepath.Join("..", "modules")) {
		module, layer := locate(f.path)
		if module == "" || layer == "" {
			continue
		}
		for _, imp := range f.imports {
			if !strings.HasPrefix(imp, modulesPrefix) {
				continue
			}
			if violatesLayerRule(module, layer, imp) {
				t.Fatalf("forbidden import in %s (%s): %s", f.path, layer, imp)
			}
		}
	}
}

func TestDomainStaysFreeOfInfrastructure(t *testing.T) {
	t.Parallel()
	forbidden := []string{"go.uber.org/zap", "database/sql", "modernc.org/", "github.com/charmbracelet/", "github.com/spf13/", "os"}
	for _, f := range sources(t, filepath.Join("..", "modules")) {
		if _, layer := locate(f.path); layer != "domain" {
			continue
		}
		for _, imp := range f.imports {
			for _, bad := range forbidden {
				if imp == bad || strings.HasSuffix(bad, "/") && strings.HasPrefix(imp, bad) {
					t.Fatalf("domain file %s imports %s", f.path, imp)
				}
			}
		}
	}
}

func TestUIReachesModulesOnlyThroughDTOs(t *testing.T) {
	t.Parallel()
	for _, f := range sources(t, filepath.Join("..", "ui")) {
		for _, imp := range f.imports {
			if strings.HasPrefix(imp, modulesPrefix) && !hasSegment(imp, "dto") {
				t.Fatalf("ui file %s imports %s; views talk to handlers through local ports", f.path, imp)
			}
		}
	}
}

func locate(path string) (module, layer string) {
	idx := strings.Index(path, "modules/")
	if idx < 0 {
		return "", ""
	}
	module, rest, _ := strings.Cut(path[idx+len("modules/"):], "/")
	for _, l := range layers {
		if strings.HasPrefix(rest, l+"/") {
			return module, l
		}
	}
	return module, ""
}

// hasSegment reports whether the slash separated path contains seg as a
// whole element sequence.
func hasSegment(path, seg string) bool {
	return strings.Contains(path+"/", "/"+seg+"/")
}

func violatesLayerRule(module, layer, imp string) bool {
	if !strings.HasPrefix(imp, modulesPrefix+module+"/") {
		if hasSegment(imp, "service") || hasSegment(imp, "adapter") || hasSegment(imp, "usecase") {
			return true
		}
		if hasSegment(imp, "port/in") || hasSegment(imp, "dto") || hasSegment(imp, "domain") {
			return false
		}
	}

	switch layer {
	case "adapter/in":
		return !hasSegment(imp, "port/in") && !hasSegment(imp, "dto")
	case "usecase":
		return hasSegment(imp, "adapter")
	case "service":
		return hasSegment(imp, "adapter") || hasSegment(imp, "usecase")
	case "domain":
		return hasSegment(imp, "adapter") || hasSegment(imp, "usecase") || hasSegment(imp, "service")
	default:
		return false
	}
}
