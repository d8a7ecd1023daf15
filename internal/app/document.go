package app

import (
	"path/filepath"
	"slices"
	"sync"

	"github.com/dshills/vimcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/vimcore/internal/dispatcher/handlers/file"
	"github.com/dshills/vimcore/internal/engine/buffer"
)

// undoLimit is the number of undo steps kept per document.
const undoLimit = 1000

// Document is an open buffer with its file name and undo history.
type Document struct {
	mu    sync.Mutex
	buf   *buffer.Memory
	hist  *editor.History
	name  string
	saved int
}

func newDocument(name, text string, ignoreCase bool) *Document {
	buf := buffer.NewMemory(text, buffer.WithPath(absPath(name)), buffer.WithIgnoreCase(ignoreCase))
	return &Document{
		buf:   buf,
		hist:  editor.NewHistory(buf, undoLimit),
		name:  name,
		saved: buf.Revision(),
	}
}

// Buffer implements file.Document.
func (d *Document) Buffer() *buffer.Memory {
	return d.buf
}

// History returns the undo history.
func (d *Document) History() *editor.History {
	return d.hist
}

// Name implements file.Document.
func (d *Document) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// SetName implements file.Document.
func (d *Document) SetName(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = path
}

// Modified implements file.Document.
func (d *Document) Modified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Revision() != d.saved
}

// MarkSaved implements file.Document.
func (d *Document) MarkSaved() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.saved = d.buf.Revision()
}

func absPath(name string) string {
	if name == "" {
		return ""
	}
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return name
}

// documents is the buffer list in opening order.
type documents struct {
	mu   sync.RWMutex
	list []*Document
}

func (ds *documents) add(doc *Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.list = append(ds.list, doc)
}

func (ds *documents) remove(doc *Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if i := slices.Index(ds.list, doc); i >= 0 {
		ds.list = slices.Delete(ds.list, i, i+1)
	}
}

func (ds *documents) all() []*Document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]*Document(nil), ds.list...)
}

func (ds *documents) find(path string) (*Document, bool) {
	want := absPath(path)
	for _, doc := range ds.all() {
		if name := doc.Name(); name != "" && (name == path || absPath(name) == want) {
			return doc, true
		}
	}
	return nil, false
}

// fileManager presents the documents to the file handlers of one window.
// Current and Switch act on that window.
type fileManager struct {
	ed  *Editor
	win *Window
}

var _ file.Manager = fileManager{}

func (m fileManager) Current() file.Document {
	return m.win.doc
}

func (m fileManager) Documents() []file.Document {
	all := m.ed.docs.all()
	out := make([]file.Document, len(all))
	for i, doc := range all {
		out[i] = doc
	}
	return out
}

func (m fileManager) Find(path string) (file.Document, bool) {
	doc, ok := m.ed.docs.find(path)
	if !ok {
		return nil, false
	}
	return doc, true
}

// Open replaces the untouched empty buffer the editor starts with.
func (m fileManager) Open(path, text string) file.Document {
	prev := m.win.doc
	doc := m.ed.newDocument(path, text)
	m.win.show(doc)
	if prev.Name() == "" && !prev.Modified() && prev.buf.Size() == 0 && m.ed.shown(prev) == 0 {
		m.ed.docs.remove(prev)
	}
	return doc
}

func (m fileManager) New() file.Document {
	doc := m.ed.newDocument("", "")
	m.win.show(doc)
	return doc
}

func (m fileManager) Switch(doc file.Document) {
	if d, ok := doc.(*Document); ok {
		m.win.show(d)
	}
}
