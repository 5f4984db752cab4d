// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sitemap

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
)

// dateLayout is the W3C date format used for <lastmod>.
const dateLayout = "2006-01-02"

// RenderPage renders a <urlset> document for one page.
func RenderPage(p Page) ([]byte, error) {
	doc, root := newDocument("urlset")
	for _, e := range p.Entries {
		u := root.CreateElement("url")
		u.CreateElement("loc").SetText(xmlText(e.Location))
		if !e.LastModified.IsZero() {
			u.CreateElement("lastmod").SetText(e.LastModified.UTC().Format(dateLayout))
		}
		if e.ChangeFreq != "" {
			u.CreateElement("changefreq").SetText(string(e.ChangeFreq))
		}
		u.CreateElement("priority").SetText(FormatPriority(e.Priority))
	}
	return writeDocument(doc, "page")
}

// RenderIndex renders a <sitemapindex> document.
func RenderIndex(entries []IndexEntry) ([]byte, error) {
	doc, root := newDocument("sitemapindex")
	for _, e := range entries {
		s := root.CreateElement("sitemap")
		s.CreateElement("loc").SetText(xmlText(e.Location))
		if !e.LastModified.IsZero() {
			s.CreateElement("lastmod").SetText(e.LastModified.UTC().Format(dateLayout))
		}
	}
	return writeDocument(doc, "index")
}

// FormatPriority prints a priority with two decimals, clamped to [0, 1].
func FormatPriority(p float64) string {
	p = max(0, min(1, p))
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func newDocument(rootTag string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(rootTag)
	root.CreateAttr("xmlns", Namespace)
	return doc, root
}

func writeDocument(doc *etree.Document, kind string) ([]byte, error) {
	doc.Indent(2)
	b, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("render sitemap %s: %w", kind, err)
	}
	return b, nil
}

// xmlText drops invalid UTF-8 and code points XML 1.0 cannot carry.
// Markup characters are escaped by etree when the document is written.
func xmlText(s string) string {
	clean := true
	for _, r := range s {
		if !xmlChar(r) {
			clean = false
			break
		}
	}
	if clean && utf8.ValidString(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, w := 0, 0; i < len(s); i += w {
		r, size := utf8.DecodeRuneInString(s[i:])
		w = size
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if xmlChar(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func xmlChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
