// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import (
	"fmt"
	"strings"
)

// stack renders the upward chain from s through parent.parentEffect to the
// root, for embedding in hang and non-effect-yield error messages.
func (e *Engine) stack(s *Strand) string {
	var b strings.Builder
	for cur := s; cur != nil; cur = cur.parent {
		if cur.parent == nil {
			fmt.Fprintf(&b, "%s (root)\n", cur.callSite)
		} else {
			fmt.Fprintf(&b, "%s [%s]\n", cur.callSite, cur.parentEffect)
		}
	}
	return b.String()
}

// tree renders the downward strand tree rooted at the run's root strand,
// indented by depth.
func (e *Engine) tree() string {
	var b strings.Builder
	if e.root != nil {
		e.renderNode(&b, e.root, 0)
	}
	return b.String()
}

func (e *Engine) renderNode(b *strings.Builder, s *Strand, depth int) {
	label := s.parentEffect
	if label == "" {
		label = "root"
	}
	fmt.Fprintf(b, "%s#%d %s (%s) trace=%s\n", strings.Repeat("  ", depth), s.id, label, s.statusLabel(), s.traceID)
	for _, c := range s.liveChildren() {
		e.renderNode(b, c, depth+1)
	}
}

// dispatchDebugTree resumes the caller with the rendered tree.
func (e *Engine) dispatchDebugTree(s *Strand, op Effect) {
	e.advance(s, e.tree(), true)
}
