package flux

import (
	"fmt"
	"go/ast"
	"go/types"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/tools/go/packages"
)

// The store struct is the synchronization boundary of the whole package, so
// its shape is pinned down: accidental field-type drift (for example dropping
// the RWMutex for a plain Mutex) changes concurrency semantics silently.
func TestStoreStructContract(t *testing.T) {
	pkg := loadFluxPackage(t)

	obj := pkg.Types.Scope().Lookup("Store")
	if obj == nil {
		t.Fatal("Store type not found")
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		t.Fatal("Store is not a named type")
	}
	structType, ok := named.Underlying().(*types.Struct)
	if !ok {
		t.Fatal("Store is not a struct")
	}

	qualifier := func(p *types.Package) string {
		if p == nil {
			return ""
		}
		return p.Path()
	}
	fields := make(map[string]string, structType.NumFields())
	for i := 0; i < structType.NumFields(); i++ {
		field := structType.Field(i)
		fields[field.Name()] = types.TypeString(field.Type(), qualifier)
	}

	required := map[string]string{
		"mu":       "sync.RWMutex",
		"slices":   "map[string]any",
		"reducers": "map[string]fluxcore/pkg/flux.Reducer",
		"order":    "[]string",
		"guards":   "[]fluxcore/pkg/flux.Guard",
		"seq":      "uint64",
		"journal":  "fluxcore/pkg/flux.JournalSink",
		"metrics":  "fluxcore/pkg/flux.MetricsRecorder",
		"tracer":   "fluxcore/pkg/flux.Tracer",
		"logger":   "fluxcore/pkg/flux.Logger",
		"nowFn":    "func() time.Time",
	}

	var problems []string
	for name, want := range required {
		got, ok := fields[name]
		if !ok {
			problems = append(problems, "missing field "+name)
			continue
		}
		if got != want {
			problems = append(problems, fmt.Sprintf("%s: want %s, got %s", name, want, got))
		}
	}
	if len(problems) > 0 {
		t.Fatalf("store struct contract violated:\n%s", strings.Join(problems, "\n"))
	}
}

// Every exported method on *Store must acquire the store mutex before
// touching shared fields.
func TestStoreMethodsAcquireLock(t *testing.T) {
	pkg := loadFluxPackage(t)
	file := findFluxFile(t, pkg, "store.go")

	var violations []string
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || fn.Body == nil || !ast.IsExported(fn.Name.Name) {
			continue
		}
		if !isStoreReceiver(fn) {
			continue
		}
		if !bodyAcquiresLock(fn.Body) {
			pos := pkg.Fset.Position(fn.Pos())
			violations = append(violations, fmt.Sprintf("%s:%d %s", filepath.Base(pos.Filename), pos.Line, fn.Name.Name))
		}
	}
	if len(violations) > 0 {
		t.Fatalf("exported store methods must lock s.mu:\n%s", strings.Join(violations, "\n"))
	}
}

func isStoreReceiver(fn *ast.FuncDecl) bool {
	if len(fn.Recv.List) == 0 {
		return false
	}
	star, ok := fn.Recv.List[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	ident, ok := star.X.(*ast.Ident)
	return ok && ident.Name == "Store"
}

func bodyAcquiresLock(body *ast.BlockStmt) bool {
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if sel.Sel.Name == "Lock" || sel.Sel.Name == "RLock" {
			found = true
			return false
		}
		return true
	})
	return found
}

var (
	fluxPkgOnce sync.Once
	fluxPkg     *packages.Package
	fluxPkgErr  error
)

func loadFluxPackage(t *testing.T) *packages.Package {
	t.Helper()
	fluxPkgOnce.Do(func() {
		cfg := &packages.Config{
			Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedCompiledGoFiles | packages.NeedFiles,
		}
		pkgs, err := packages.Load(cfg, "fluxcore/pkg/flux")
		if err != nil {
			fluxPkgErr = fmt.Errorf("load package: %w", err)
			return
		}
		for _, pkg := range pkgs {
			if len(pkg.Errors) > 0 {
				fluxPkgErr = fmt.Errorf("package load errors: %v", pkg.Errors)
				return
			}
			if pkg.PkgPath == "fluxcore/pkg/flux" {
				fluxPkg = pkg
				return
			}
		}
		fluxPkgErr = fmt.Errorf("package not found in load results")
	})
	if fluxPkgErr != nil {
		t.Fatalf("package load: %v", fluxPkgErr)
	}
	return fluxPkg
}

func findFluxFile(t *testing.T, pkg *packages.Package, target string) *ast.File {
	t.Helper()
	for _, file := range pkg.Syntax {
		pos := pkg.Fset.Position(file.Pos())
		if filepath.Base(pos.Filename) == target {
			return file
		}
	}
	t.Fatalf("failed to locate %s in package", target)
	return nil
}
