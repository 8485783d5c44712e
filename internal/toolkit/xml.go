package toolkit

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const maxXMLIndent = 8

func xmlTools() []*Tool {
	return []*Tool{
		{
			Name:        "xml-beautify",
			Title:       "XML Beautify",
			Category:    CategoryData,
			Description: "Pretty-print XML, one element per line",
			Inputs: []Input{
				textInput("XML document"),
				{Name: "indent", Description: "Spaces per level (0-8)", Type: "integer", Default: "2"},
			},
			Fn: xmlBeautify,
		},
		{
			Name:        "xml-minify",
			Title:       "XML Minify",
			Category:    CategoryData,
			Description: "Strip whitespace between XML elements",
			Inputs:      []Input{textInput("XML document")},
			Fn:          xmlMinify,
		},
		{
			Name:        "xml-to-json",
			Title:       "XML to JSON",
			Category:    CategoryData,
			Description: "Convert an XML document to JSON, repeated elements become arrays",
			Inputs:      []Input{textInput("XML document")},
			Fn:          xmlToJSON,
		},
	}
}

func xmlBeautify(_ context.Context, in Inputs) (Result, error) {
	indent, err := in.Int("indent", 2)
	if err != nil {
		return Result{}, err
	}
	if indent < 0 || indent > maxXMLIndent {
		return Result{}, invalidInput("indent", "must be between 0 and %d, got %d", maxXMLIndent, indent)
	}

	out, err := reformatXML(in.String(InputKey), strings.Repeat(" ", int(indent)))
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out}, nil
}

func xmlMinify(_ context.Context, in Inputs) (Result, error) {
	out, err := reformatXML(in.String(InputKey), "")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out}, nil
}

// reformatXML re-encodes every token of doc, dropping whitespace-only text
// and trimming the rest. A non-empty indent puts each element on its own line.
func reformatXML(doc, indent string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if indent != "" {
		enc.Indent("", indent)
	}

	elements := 0
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", invalidInput(InputKey, "%v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elements++
			tok = prefixedStart(t)
		case xml.EndElement:
			t.Name = prefixedName(t.Name)
			tok = t
		case xml.CharData:
			text := bytes.TrimSpace(t)
			if len(text) == 0 {
				continue
			}
			tok = xml.CharData(text)
		}

		if err := enc.EncodeToken(tok); err != nil {
			return "", invalidInput(InputKey, "%v", err)
		}
	}

	if elements == 0 {
		return "", invalidInput(InputKey, "no XML elements found")
	}
	if err := enc.Close(); err != nil {
		return "", invalidInput(InputKey, "%v", err)
	}
	return buf.String(), nil
}

// prefixedName folds a raw namespace prefix back into the local name so the
// encoder writes it verbatim instead of inventing xmlns attributes.
func prefixedName(n xml.Name) xml.Name {
	if n.Space == "" {
		return n
	}
	return xml.Name{Local: n.Space + ":" + n.Local}
}

func prefixedStart(t xml.StartElement) xml.StartElement {
	out := xml.StartElement{Name: prefixedName(t.Name), Attr: make([]xml.Attr, len(t.Attr))}
	for i, attr := range t.Attr {
		out.Attr[i] = xml.Attr{Name: prefixedName(attr.Name), Value: attr.Value}
	}
	return out
}

func xmlToJSON(_ context.Context, in Inputs) (Result, error) {
	dec := xml.NewDecoder(strings.NewReader(in.String(InputKey)))

	var root jsonObject
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, invalidInput(InputKey, "%v", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if root != nil {
			return Result{}, invalidInput(InputKey, "XML must have a single root element")
		}
		value, err := readElement(dec, start)
		if err != nil {
			return Result{}, err
		}
		root = jsonObject{{Key: prefixedName(start.Name).Local, Value: value}}
	}

	if root == nil {
		return Result{}, invalidInput(InputKey, "no XML elements found")
	}
	out, err := marshalJSON(root, "")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: string(out)}, nil
}

// readElement converts the element opened by start. Attributes become "@name"
// keys and children keep document order; a child name seen more than once
// collects its values into an array. Text next to children goes under "#text".
func readElement(dec *xml.Decoder, start xml.StartElement) (interface{}, error) {
	name := prefixedName(start.Name).Local

	var fields jsonObject
	for _, attr := range start.Attr {
		fields = append(fields, jsonField{Key: "@" + prefixedName(attr.Name).Local, Value: attr.Value})
	}

	var text strings.Builder
	children := make(map[string]int)

loop:
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			return nil, invalidInput(InputKey, "unexpected end of document inside <%s>", name)
		}
		if err != nil {
			return nil, invalidInput(InputKey, "%v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child := prefixedName(t.Name).Local
			value, err := readElement(dec, t)
			if err != nil {
				return nil, err
			}
			idx, seen := children[child]
			if !seen {
				children[child] = len(fields)
				fields = append(fields, jsonField{Key: child, Value: value})
				continue
			}
			if list, ok := fields[idx].Value.(repeated); ok {
				fields[idx].Value = append(list, value)
			} else {
				fields[idx].Value = repeated{fields[idx].Value, value}
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if end := prefixedName(t.Name).Local; end != name {
				return nil, invalidInput(InputKey, "element <%s> closed by </%s>", name, end)
			}
			break loop
		}
	}

	content := strings.Join(strings.Fields(text.String()), " ")
	switch {
	case len(fields) == 0 && content == "":
		return nil, nil
	case len(fields) == 0:
		return content, nil
	case content != "":
		fields = append(fields, jsonField{Key: "#text", Value: content})
	}
	return fields, nil
}

// repeated marks an array built from sibling elements sharing a name, so a
// third sibling extends it instead of nesting.
type repeated []interface{}
