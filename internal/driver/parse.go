package driver

import (
	"github.com/sdvcn/vox/internal/arena"
	"github.com/sdvcn/vox/internal/ast"
	"github.com/sdvcn/vox/internal/diag"
	"github.com/sdvcn/vox/internal/lexer"
	"github.com/sdvcn/vox/internal/parser"
	"github.com/sdvcn/vox/internal/source"
	"github.com/sdvcn/vox/internal/token"
)

// ParsedFile is one source file's worth of parse output: its top-level
// item list (mutable — static expansion and name registration may
// rewrite it in place) plus the FileID it was loaded under.
type ParsedFile struct {
	Path  string
	File  source.FileID
	Items arena.Span
}

// parseOne lexes and parses a single already-loaded file into c's
// shared Store/Interp. Unlike loadBytes, this never runs concurrently
// with another call against the same Context — every call shares one
// arena.Store and one intern.Table, neither safe for concurrent
// mutation.
func (c *Context) parseOne(path string, content []byte) (*ParsedFile, error) {
	fileID := c.Files.Add(path, content, 0)
	file := c.Files.Get(fileID)

	reporterAdapter := &lexer.ReporterAdapter{Bag: c.Bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporterAdapter.Reporter()})

	opts := parser.Options{
		Reporter:  &diag.BagReporter{Bag: c.Bag},
		MaxErrors: 0,
	}
	result := parser.ParseFile(lx, c.Store, c.Interp, fileID, opts)
	items := c.Store.AppendItems(result.Items...)

	return &ParsedFile{Path: path, File: fileID, Items: items}, nil
}

// LoadAndParse reads every path concurrently, then lexes and parses
// each sequentially in the given order — the order matters when two
// files declare conflicting top-level names, since diagnostics name
// whichever declaration name_register_self visits second.
func (c *Context) LoadAndParse(paths []string) ([]*ParsedFile, error) {
	end := c.phase("load")
	contents, err := loadBytes(paths)
	end("")
	if err != nil {
		return nil, err
	}

	end = c.phase("parse")
	files := make([]*ParsedFile, len(paths))
	for i, p := range paths {
		c.emit(Event{File: p, Stage: StageParse, Status: StatusWorking})
		pf, err := c.parseOne(p, contents[i])
		if err != nil {
			c.emit(Event{File: p, Stage: StageParse, Status: StatusError})
			return nil, err
		}
		c.emit(Event{File: p, Stage: StageParse, Status: StatusDone})
		files[i] = pf
	}
	end("")
	return files, nil
}

// LoadVirtual registers an in-memory source (used by tests and by
// stdin-fed CLI invocations) the same way LoadAndParse registers a
// file loaded from disk.
func (c *Context) LoadVirtual(name string, content []byte) (*ParsedFile, error) {
	fileID := c.Files.AddVirtual(name, content)
	file := c.Files.Get(fileID)

	reporterAdapter := &lexer.ReporterAdapter{Bag: c.Bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporterAdapter.Reporter()})
	opts := parser.Options{Reporter: &diag.BagReporter{Bag: c.Bag}}
	result := parser.ParseFile(lx, c.Store, c.Interp, fileID, opts)
	items := c.Store.AppendItems(result.Items...)

	return &ParsedFile{Path: name, File: fileID, Items: items}, nil
}

// Tokenize lexes path without parsing, for the `voxc tokenize`
// subcommand — the one place the lexer's pull-based Next() is driven
// directly instead of being driven from inside the parser.
func Tokenize(path string) (*source.FileSet, source.FileID, []token.Token, *diag.Bag, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(0)
	reporterAdapter := &lexer.ReporterAdapter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporterAdapter.Reporter()})

	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return fs, fileID, toks, bag, nil
}
