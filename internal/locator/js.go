package locator

import (
	"fmt"
	"strings"
)

// wrapperSelectors are the common content-wrapper selectors, in preference
// order. Used both to scope table enumeration and as climb targets.
var wrapperSelectors = []string{
	"main",
	"article",
	"[role=\"main\"]",
	"#content",
	".content",
	"#main",
	".main",
	".container",
	".wrapper",
}

func wrapperSelectorList() string {
	return strings.Join(wrapperSelectors, ", ")
}

// visibleFnJS is shared by the snapshot snippets: computed display,
// visibility and opacity checks plus a minimal size floor.
const visibleFnJS = `
	const visible = (el, minSize) => {
		const cs = getComputedStyle(el);
		if (cs.display === 'none' || cs.visibility === 'hidden' || parseFloat(cs.opacity) === 0) return false;
		const r = el.getBoundingClientRect();
		return r.width >= minSize && r.height >= minSize;
	};
	const docBox = el => {
		const r = el.getBoundingClientRect();
		return {x: r.x + window.scrollX, y: r.y + window.scrollY, width: r.width, height: r.height};
	};`

// tableEnumJS enumerates table-like candidates: wrapper-scoped first, the
// whole document as a fallback. Embedded identically in the measurement and
// resolver snippets so indexes line up.
func tableEnumJS() string {
	scoped := make([]string, 0, len(wrapperSelectors))
	for _, w := range wrapperSelectors {
		scoped = append(scoped, w+" table")
	}
	return fmt.Sprintf(`
	const enumTables = () => {
		let els = document.querySelectorAll(%q);
		if (!els.length) els = document.querySelectorAll('table, [role="table"]');
		return Array.from(els);
	};`, strings.Join(scoped, ", "))
}

// tableBoxesJS returns measurements for every candidate, with the
// enumeration index so the chosen one can be re-resolved.
func tableBoxesJS() string {
	return fmt.Sprintf(`
	(() => {
		%s
		%s
		const out = [];
		enumTables().forEach((el, i) => {
			if (!visible(el, %d)) return;
			const b = docBox(el);
			out.push({index: i, x: b.x, y: b.y, width: b.width, height: b.height});
		});
		return out;
	})()`, visibleFnJS, tableEnumJS(), tableMinSize)
}

func tableResolveJS(index int) string {
	return fmt.Sprintf(`(() => { %s return enumTables()[%d]; })()`, tableEnumJS(), index)
}

// chainSnippetJS serializes the ancestor chain of a start element, from the
// element itself up to (excluding) the document root.
const chainSnippetJS = `
	const chainOf = start => {
		const chain = [];
		for (let n = start; n && n !== document.documentElement; n = n.parentElement) {
			const cs = getComputedStyle(n);
			const b = docBox(n);
			chain.push({
				tag: n.tagName.toLowerCase(),
				x: b.x, y: b.y, width: b.width, height: b.height,
				visible: cs.display !== 'none' && cs.visibility !== 'hidden' && parseFloat(cs.opacity) > 0,
				block: cs.display !== 'inline' && cs.display !== 'contents',
				wrapper: n.matches(WRAPPERS),
			});
		}
		return chain;
	};`

func withWrappers(js string) string {
	return fmt.Sprintf("const WRAPPERS = %q;\n%s", wrapperSelectorList(), js)
}

// centerChainJS snapshots the ancestor chain of the element under the
// geometric center of the viewport.
func centerChainJS() string {
	return fmt.Sprintf(`
	(() => {
		%s
		const start = document.elementFromPoint(window.innerWidth / 2, window.innerHeight / 2) || document.body;
		return chainOf(start);
	})()`, withWrappers(visibleFnJS+chainSnippetJS))
}

// centerResolveJS re-resolves the chain element that is `steps` parent hops
// above the element under the viewport center.
func centerResolveJS(steps int) string {
	return fmt.Sprintf(`
	(() => {
		let el = document.elementFromPoint(window.innerWidth / 2, window.innerHeight / 2) || document.body;
		for (let k = 0; k < %d && el.parentElement; k++) el = el.parentElement;
		return el;
	})()`, steps)
}

// centerFallbackResolveJS tries each wrapper selector in preference order
// and resolves the first match, else the body. This is the documented
// always-succeeds degradation.
func centerFallbackResolveJS() string {
	quoted := make([]string, 0, len(wrapperSelectors))
	for _, w := range wrapperSelectors {
		quoted = append(quoted, fmt.Sprintf("%q", w))
	}
	return fmt.Sprintf(`
	(() => {
		for (const s of [%s]) {
			const el = document.querySelector(s);
			if (el) return el;
		}
		return document.body;
	})()`, strings.Join(quoted, ", "))
}

// headingListJS lists every heading's text with its enumeration index.
const headingListJS = `
	(() => Array.from(document.querySelectorAll('h1,h2,h3,h4,h5,h6'))
		.map((h, i) => ({index: i, text: (h.textContent || '').trim()})))()`

// headingSnapshotJS serializes the matched heading's box, its ancestor
// chain, and every anchor below the heading (trailing-marker candidates).
func headingSnapshotJS(index int) string {
	return fmt.Sprintf(`
	(() => {
		%s
		const h = document.querySelectorAll('h1,h2,h3,h4,h5,h6')[%d];
		const hb = docBox(h);
		const anchors = [];
		document.querySelectorAll('a').forEach(a => {
			const b = docBox(a);
			if (b.y > hb.y && b.width > 0 && b.height > 0) {
				anchors.push({text: (a.textContent || '').trim(), x: b.x, y: b.y, width: b.width, height: b.height});
			}
		});
		anchors.sort((p, q) => p.y - q.y);
		return {heading: hb, chain: chainOf(h), anchors: anchors};
	})()`, withWrappers(visibleFnJS+chainSnippetJS), index)
}

// headingResolveJS resolves the container `steps` parent hops above the
// matched heading; zero steps resolves the heading itself.
func headingResolveJS(index, steps int) string {
	return fmt.Sprintf(`
	(() => {
		let el = document.querySelectorAll('h1,h2,h3,h4,h5,h6')[%d];
		for (let k = 0; k < %d && el.parentElement; k++) el = el.parentElement;
		return el;
	})()`, index, steps)
}
