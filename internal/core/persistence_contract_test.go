package core

import (
	"go/types"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestPersistentStoreImplementations ensures only sanctioned persistence
// packages provide concrete implementations of domain.PersistentStore. Adding
// a new backend requires an explicit update of the allowed list.
func TestPersistentStoreImplementations(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes, Tests: true}
	pkgs, err := packages.Load(cfg, "labregistry/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var persistentStore *types.Interface
	for _, p := range pkgs {
		if p.PkgPath == "labregistry/pkg/domain" {
			obj := p.Types.Scope().Lookup("PersistentStore")
			if obj == nil {
				t.Fatalf("domain.PersistentStore not found")
			}
			iface, ok := obj.Type().Underlying().(*types.Interface)
			if !ok {
				t.Fatalf("domain.PersistentStore is not an interface")
			}
			persistentStore = iface
		}
	}
	if persistentStore == nil {
		t.Fatalf("failed to resolve PersistentStore interface")
	}

	allowed := map[string]struct{}{
		"labregistry/internal/infra/persistence/memory":   {},
		"labregistry/internal/infra/persistence/sqlite":   {},
		"labregistry/internal/infra/persistence/postgres": {},
	}
	var unexpected []string
	for _, p := range pkgs {
		if p.Types == nil || p.Types.Scope() == nil {
			continue
		}
		for _, name := range p.Types.Scope().Names() {
			obj := p.Types.Scope().Lookup(name)
			named, ok := obj.Type().(*types.Named)
			if !ok {
				continue
			}
			if _, ok := named.Underlying().(*types.Struct); !ok {
				continue
			}
			if types.Implements(types.NewPointer(named), persistentStore) {
				if _, ok := allowed[p.PkgPath]; !ok {
					unexpected = append(unexpected, p.PkgPath+"."+name)
				}
			}
		}
	}
	if len(unexpected) > 0 {
		t.Fatalf("unexpected PersistentStore implementations (update the allowed list when adding a backend):\n%v", unexpected)
	}
}

// TestDomainPackageImportsStdlibOnly keeps pkg/domain free of third-party and
// internal dependencies so every layer can import it without cycles.
func TestDomainPackageImportsStdlibOnly(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "labregistry/pkg/domain")
	if err != nil {
		t.Fatalf("load domain package: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected exactly one package, got %d", len(pkgs))
	}
	for path := range pkgs[0].Imports {
		if containsDot(path) {
			t.Fatalf("pkg/domain must not import non-stdlib package %s", path)
		}
	}
}

func containsDot(path string) bool {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			return true
		}
		if path[i] == '/' {
			return false
		}
	}
	return false
}
