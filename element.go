// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"html"
	"html/template"
	"strings"
)

// voidElements have no closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

type attribute struct {
	key, value string
	boolean    bool
}

// node is an Element, or raw markup.
type node interface {
	writeTo(b *strings.Builder)
}

type rawHTML template.HTML

func (h rawHTML) writeTo(b *strings.Builder) { b.WriteString(string(h)) }

// Element is a HTML element, the result of rendering fields.
//
// Attributes keep the order they have been set in.
type Element struct {
	Tag      string
	attrs    []attribute
	children []node
}

// El creates an element with attributes from key/value pairs.
func El(tag string, keyValues ...string) *Element {
	e := &Element{Tag: tag}
	for i := 0; i+1 < len(keyValues); i += 2 {
		e.Set(keyValues[i], keyValues[i+1])
	}
	return e
}

func (e *Element) index(key string) int {
	for i := range e.attrs {
		if e.attrs[i].key == key {
			return i
		}
	}
	return -1
}

// Set adds or replaces an attribute.
func (e *Element) Set(key, value string) *Element {
	if i := e.index(key); i >= 0 {
		e.attrs[i] = attribute{key: key, value: value}
		return e
	}
	e.attrs = append(e.attrs, attribute{key: key, value: value})
	return e
}

// SetBool adds a boolean attribute, like "required", or removes it.
func (e *Element) SetBool(key string, present bool) *Element {
	if !present {
		return e.Unset(key)
	}
	if i := e.index(key); i >= 0 {
		e.attrs[i] = attribute{key: key, boolean: true}
		return e
	}
	e.attrs = append(e.attrs, attribute{key: key, boolean: true})
	return e
}

// Unset removes an attribute.
func (e *Element) Unset(key string) *Element {
	if i := e.index(key); i >= 0 {
		e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
	}
	return e
}

// Attr returns the value of an attribute, and whether it has been set.
func (e *Element) Attr(key string) (string, bool) {
	if i := e.index(key); i >= 0 {
		return e.attrs[i].value, true
	}
	return "", false
}

// Add appends child elements; nil is skipped.
func (e *Element) Add(children ...*Element) *Element {
	for _, c := range children {
		if c != nil {
			e.children = append(e.children, c)
		}
	}
	return e
}

// AddHTML appends markup as is.
func (e *Element) AddHTML(h template.HTML) *Element {
	e.children = append(e.children, rawHTML(h))
	return e
}

// AddText appends text, which will be escaped.
func (e *Element) AddText(s string) *Element {
	return e.AddHTML(template.HTML(html.EscapeString(s)))
}

// Children are the immediate child elements, without any markup added by AddHTML.
func (e *Element) Children() []*Element {
	var list []*Element
	for _, c := range e.children {
		if el, ok := c.(*Element); ok {
			list = append(list, el)
		}
	}
	return list
}

// Find returns the first descendant with attribute "name" set to 'name'.
func (e *Element) Find(name string) *Element {
	if all := e.FindAll(name); len(all) > 0 {
		return all[0]
	}
	return nil
}

// FindAll is Find for every such descendant, in document order.
func (e *Element) FindAll(name string) []*Element {
	var found []*Element
	for _, c := range e.Children() {
		if v, ok := c.Attr("name"); ok && v == name {
			found = append(found, c)
		}
		found = append(found, c.FindAll(name)...)
	}
	return found
}

// Clone is a deep copy.
func (e *Element) Clone() *Element {
	c := &Element{
		Tag:      e.Tag,
		attrs:    append([]attribute(nil), e.attrs...),
		children: make([]node, 0, len(e.children)),
	}
	for _, child := range e.children {
		if el, ok := child.(*Element); ok {
			c.children = append(c.children, el.Clone())
			continue
		}
		c.children = append(c.children, child)
	}
	return c
}

func (e *Element) writeTo(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.Tag)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		b.WriteString(a.key)
		if a.boolean {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidElements[e.Tag] {
		return
	}
	for _, c := range e.children {
		c.writeTo(b)
	}
	b.WriteString("</")
	b.WriteString(e.Tag)
	b.WriteByte('>')
}

// String renders the element as HTML.
func (e *Element) String() string {
	var b strings.Builder
	e.writeTo(&b)
	return b.String()
}

// HTML is String for use in html/template.
func (e *Element) HTML() template.HTML {
	return template.HTML(e.String())
}
