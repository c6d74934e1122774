package driver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/intern"
	"github.com/sdvcn/vox/internal/project"
	"github.com/sdvcn/vox/internal/source"
)

// SourceExt is the file extension project.NormalizeModulePath strips;
// DiscoverFiles walks a directory tree collecting exactly these.
const SourceExt = ".vx"

// DiscoverFiles walks root collecting every .vx file, sorted for a
// deterministic compile order independent of the filesystem's own
// directory-entry ordering.
func DiscoverFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, SourceExt) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// moduleMeta extracts a project.ModuleMeta from a parsed file's own
// top-level items: its own `module a.b;` declaration (if any) names
// the module path, and every `import` declaration among its siblings
// names one of that module's dependencies. A file with no module
// declaration falls back to its path relative to baseDir, normalized
// by project.NormalizeModulePath — the same fallback the teacher's
// analyzeDependencyModule uses for a file nobody explicitly named.
func moduleMeta(store *ast.Store, interp *intern.Table, pf *ParsedFile, baseDir string) project.ModuleMeta {
	meta := project.ModuleMeta{Kind: project.ModuleKindModule}

	rel, err := filepath.Rel(baseDir, pf.Path)
	if err != nil {
		rel = pf.Path
	}
	if norm, err := project.NormalizeModulePath(rel); err == nil {
		meta.Path = norm
		meta.Dir = filepath.ToSlash(filepath.Dir(rel))
	}

	for _, item := range store.ItemsOf(pf.Items) {
		if item.Kind() != ast.KindDecl {
			continue
		}
		d := store.MustDecl(item)
		switch d.Kind {
		case ast.DeclModule:
			meta.HasModulePragma = true
			meta.Span = d.Span
			if p := dottedPath(interp, d.Path); p != "" {
				if norm, err := project.NormalizeModulePath(p); err == nil {
					meta.Path = norm
				}
			}
		case ast.DeclImport:
			p := dottedPath(interp, d.Path)
			if p == "" {
				continue
			}
			norm, err := project.NormalizeModulePath(p)
			if err != nil {
				continue
			}
			meta.Imports = append(meta.Imports, project.ImportMeta{Path: norm, Span: d.Span})
		}
	}
	if meta.Span == (source.Span{}) && len(store.ItemsOf(pf.Items)) > 0 {
		meta.Span = store.MustDecl(store.ItemsOf(pf.Items)[0]).Span
	}
	meta.Files = []project.ModuleFileMeta{{Path: pf.Path, Span: meta.Span}}
	return meta
}

func dottedPath(interp *intern.Table, path []intern.ID) string {
	if len(path) == 0 {
		return ""
	}
	segs := make([]string, len(path))
	for i, id := range path {
		segs[i] = interp.MustLookup(id)
	}
	return strings.Join(segs, "/")
}
