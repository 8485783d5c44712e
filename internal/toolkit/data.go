package toolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func dataTools() []*Tool {
	sortInput := Input{Name: "sort", Description: "Sort object keys alphabetically", Type: "boolean", Default: "false"}

	return []*Tool{
		{
			Name:        "json-beautify",
			Title:       "JSON Beautify",
			Category:    CategoryData,
			Description: "Pretty-print JSON with two-space indentation",
			Inputs:      []Input{textInput("JSON document"), sortInput},
			Fn:          jsonBeautify,
		},
		{
			Name:        "json-minify",
			Title:       "JSON Minify",
			Category:    CategoryData,
			Description: "Strip insignificant whitespace from JSON",
			Inputs:      []Input{textInput("JSON document"), sortInput},
			Fn:          jsonMinify,
		},
		{
			Name:        "json-to-yaml",
			Title:       "JSON to YAML",
			Category:    CategoryData,
			Description: "Convert a JSON document to block-style YAML, keeping key order",
			Inputs:      []Input{textInput("JSON document")},
			Fn:          jsonToYAML,
		},
		{
			Name:        "yaml-to-json",
			Title:       "YAML to JSON",
			Category:    CategoryData,
			Description: "Convert the first document of a YAML stream to JSON, keeping key order",
			Inputs:      []Input{textInput("YAML document")},
			Fn:          yamlToJSON,
		},
		{
			Name:        "json-to-xml",
			Title:       "JSON to XML",
			Category:    CategoryData,
			Description: "Convert a JSON document to XML, arrays repeat their parent element",
			Inputs: []Input{
				textInput("JSON document"),
				{Name: "root", Description: "Root element name; a single-key object names its own root", Type: "string"},
			},
			Fn: jsonToXML,
		},
	}
}

// normalizeJSON validates the input and, if sort is set, re-encodes it with
// sorted object keys. Without sort the original key order is kept.
func normalizeJSON(in Inputs) ([]byte, error) {
	data := []byte(strings.TrimSpace(in.String(InputKey)))
	if !json.Valid(data) {
		return nil, invalidInput(InputKey, "not valid JSON")
	}

	sortKeys, err := in.Bool("sort", false)
	if err != nil {
		return nil, err
	}
	if !sortKeys {
		return data, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, invalidInput(InputKey, "%v", err)
	}

	// encoding/json always writes map keys in sorted order.
	return marshalJSON(v, "")
}

// marshalJSON encodes v without HTML escaping and without the trailing
// newline, indenting when indent is set.
func marshalJSON(v interface{}, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func jsonBeautify(_ context.Context, in Inputs) (Result, error) {
	data, err := normalizeJSON(in)
	if err != nil {
		return Result{}, err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return Result{}, invalidInput(InputKey, "%v", err)
	}
	return Result{Output: out.String()}, nil
}

func jsonMinify(_ context.Context, in Inputs) (Result, error) {
	data, err := normalizeJSON(in)
	if err != nil {
		return Result{}, err
	}

	var out bytes.Buffer
	if err := json.Compact(&out, data); err != nil {
		return Result{}, invalidInput(InputKey, "%v", err)
	}
	return Result{Output: out.String()}, nil
}

// jsonToYAML parses the JSON as YAML (JSON is a YAML subset), which keeps key
// order and number literals, then switches every node to block style.
func jsonToYAML(_ context.Context, in Inputs) (Result, error) {
	data := []byte(strings.TrimSpace(in.String(InputKey)))
	if !json.Valid(data) {
		return Result{}, invalidInput(InputKey, "not valid JSON")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Result{}, invalidInput(InputKey, "%v", err)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return Result{}, err
	}
	if err := enc.Close(); err != nil {
		return Result{}, err
	}

	return Result{Output: strings.TrimRight(buf.String(), "\n")}, nil
}

// blockStyle clears flow and quoting styles. The encoder re-quotes scalars
// whose plain form would resolve to a different tag.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// jsonField is one member of a jsonObject.
type jsonField struct {
	Key   string
	Value interface{}
}

// jsonObject is a JSON object that keeps its member order.
type jsonObject []jsonField

func (o jsonObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSON(f.Key, "")
		if err != nil {
			return nil, err
		}
		value, err := marshalJSON(f.Value, "")
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func yamlToJSON(_ context.Context, in Inputs) (Result, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(in.String(InputKey)), &doc); err != nil {
		return Result{}, invalidInput(InputKey, "%v", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Result{}, invalidInput(InputKey, "empty YAML document")
	}

	value, err := yamlValue(doc.Content[0])
	if err != nil {
		return Result{}, invalidInput(InputKey, "%v", err)
	}
	out, err := marshalJSON(value, "")
	if err != nil {
		return Result{}, err
	}
	return Result{Output: string(out)}, nil
}

// yamlValue converts a node to a JSON-encodable value. Integers and finite
// floats stay numbers; everything else without a JSON type becomes a string.
func yamlValue(n *yaml.Node) (interface{}, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.SequenceNode:
		items := make([]interface{}, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.MappingNode:
		obj := make(jsonObject, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj = append(obj, jsonField{Key: key.Value, Value: v})
		}
		return obj, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func yamlScalar(n *yaml.Node) (interface{}, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return n.Value, nil
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return n.Value, nil
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	}
	return n.Value, nil
}

// decodeOrdered reads one JSON value from dec, keeping object member order.
func decodeOrdered(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := jsonObject{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				v, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, jsonField{Key: keyTok.(string), Value: v})
			}
			_, err := dec.Token()
			return obj, err
		case '[':
			items := []interface{}{}
			for dec.More() {
				v, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, v)
			}
			_, err := dec.Token()
			return items, err
		}
		return nil, fmt.Errorf("unexpected %v", t)
	default:
		return t, nil
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func jsonToXML(_ context.Context, in Inputs) (Result, error) {
	data := strings.TrimSpace(in.String(InputKey))
	if !json.Valid([]byte(data)) {
		return Result{}, invalidInput(InputKey, "not valid JSON")
	}

	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	value, err := decodeOrdered(dec)
	if err != nil {
		return Result{}, invalidInput(InputKey, "%v", err)
	}

	root := strings.TrimSpace(in.String("root"))
	if root == "" {
		root = "root"
		if obj, ok := value.(jsonObject); ok && len(obj) == 1 {
			root, value = obj[0].Key, obj[0].Value
		}
	}

	var b strings.Builder
	writeXMLValue(&b, root, value)
	return Result{Output: b.String()}, nil
}

// writeXMLValue writes value as an element named key. Arrays repeat the
// element once per item; null and empty arrays give an empty element.
func writeXMLValue(b *strings.Builder, key string, value interface{}) {
	name := xmlEscaper.Replace(key)

	switch v := value.(type) {
	case jsonObject:
		b.WriteString("<" + name + ">")
		for _, f := range v {
			writeXMLValue(b, f.Key, f.Value)
		}
		b.WriteString("</" + name + ">")
	case []interface{}:
		if len(v) == 0 {
			b.WriteString("<" + name + " />")
		}
		for _, item := range v {
			writeXMLValue(b, key, item)
		}
	case nil:
		b.WriteString("<" + name + " />")
	default:
		b.WriteString("<" + name + ">" + xmlEscaper.Replace(fmt.Sprint(v)) + "</" + name + ">")
	}
}
