package file

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/vimcore/internal/dispatcher"
)

// buffers lists the open buffers. % marks the current one and + a
// modified one.
func (h *Handler) buffers(_ context.Context, _ dispatcher.Call) error {
	cur := h.docs.Current()
	for i, doc := range h.docs.Documents() {
		active, mod := ' ', ' '
		if doc == cur {
			active = '%'
		}
		if doc.Modified() {
			mod = '+'
		}
		name := doc.Name()
		if name == "" {
			name = "[No Name]"
		}
		buf := doc.Buffer()
		h.out.ReportStatus(fmt.Sprintf("%3d %c %c %-30q line %d", i+1, active, mod, name, buf.RowOf(buf.Cursor())+1))
	}
	return nil
}

// buffer switches to a buffer by number or by a unique part of its name.
func (h *Handler) buffer(_ context.Context, call dispatcher.Call) error {
	docs := h.docs.Documents()
	if n, ok := call.Args.Int("number"); ok {
		if n < 1 || n > len(docs) {
			return fmt.Errorf("%w: %d", ErrNoSuchBuffer, n)
		}
		h.docs.Switch(docs[n-1])
		return nil
	}
	name := call.Args.Text("name")
	if name == "" {
		return nil
	}
	var found []Document
	for _, doc := range docs {
		if doc.Name() == name {
			h.docs.Switch(doc)
			return nil
		}
		if strings.Contains(doc.Name(), name) {
			found = append(found, doc)
		}
	}
	switch len(found) {
	case 0:
		return fmt.Errorf("%w: %s", ErrNoSuchBuffer, name)
	case 1:
		h.docs.Switch(found[0])
		return nil
	}
	return fmt.Errorf("%w for %s", ErrAmbiguousBuffer, name)
}

// cycle handles :bnext and :bprevious, which wrap around and take a count,
// and :bfirst and :blast.
func (h *Handler) cycle(_ context.Context, call dispatcher.Call) error {
	docs := h.docs.Documents()
	n := len(docs)
	if n == 0 {
		return ErrNoSuchBuffer
	}
	cur := 0
	for i, doc := range docs {
		if doc == h.docs.Current() {
			cur = i
		}
	}
	count := max(call.Count(), 1)
	var next int
	switch call.Handler {
	case ActionBufferNext:
		next = (cur + count) % n
	case ActionBufferPrev:
		next = ((cur-count)%n + n) % n
	case ActionBufferFirst:
		next = 0
	case ActionBufferLast:
		next = n - 1
	}
	h.docs.Switch(docs[next])
	return nil
}
