/*
Package toolkit defines the developer-utility tools and their operations.

Each Tool has a stable name (its id for usage ranking), a category, a list of
inputs and an Operation. Operations take string inputs and return a string
Result; they never touch usage tracking or storage, which is the caller's
concern.

Categories:
  - string:      case conversion, analysis, reverse, replace, slugify, trim
  - encoding:    base64, URL and hex encode/decode
  - security:    md5, sha1, sha256, sha512 digests and HMAC-SHA256/512
  - identifiers: UUID v4 and v7, ULID
  - random:      random strings and numbers
  - data:        JSON and XML beautify/minify, JSON/YAML/XML conversion
  - datetime:    current timestamp and timestamp formatting
  - conversion:  bytes, time, length and temperature units
*/
package toolkit

import (
	"context"
	"fmt"
	"sort"
)

// Category groups related tools.
type Category string

const (
	CategoryString      Category = "string"
	CategoryEncoding    Category = "encoding"
	CategorySecurity    Category = "security"
	CategoryIdentifiers Category = "identifiers"
	CategoryRandom      Category = "random"
	CategoryData        Category = "data"
	CategoryDatetime    Category = "datetime"
	CategoryConversion  Category = "conversion"
)

// Result is the output of an operation.
type Result struct {
	Output string `json:"output"`
}

// Operation transforms inputs into a result.
type Operation func(ctx context.Context, in Inputs) (Result, error)

// Input describes one named parameter of a tool.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"` // "string", "integer", "number" or "boolean"
	Required    bool   `json:"required,omitempty"`
	Default     string `json:"default,omitempty"`
}

// Tool is a single utility.
type Tool struct {
	// Name is the stable id, e.g. "base64-encode".
	Name string `json:"name"`

	// Title is a human-readable label.
	Title string `json:"title"`

	Category    Category `json:"category"`
	Description string   `json:"description"`
	Inputs      []Input  `json:"inputs,omitempty"`

	Fn Operation `json:"-"`
}

// ID returns the tool's name, the key usage is tracked under.
func (t *Tool) ID() string {
	return t.Name
}

// InputSchema returns a JSON schema object describing the tool's inputs.
func (t *Tool) InputSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(t.Inputs))
	required := []string{}

	for _, in := range t.Inputs {
		prop := map[string]interface{}{
			"type":        in.Type,
			"description": in.Description,
		}
		if in.Default != "" {
			prop["default"] = in.Default
		}
		properties[in.Name] = prop
		if in.Required {
			required = append(required, in.Name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Catalog is an ordered, immutable set of tools.
type Catalog struct {
	tools  []*Tool
	byName map[string]*Tool
}

// NewCatalog builds a catalog. Tool names must be unique and non-empty.
func NewCatalog(tools ...*Tool) (*Catalog, error) {
	c := &Catalog{
		tools:  make([]*Tool, 0, len(tools)),
		byName: make(map[string]*Tool, len(tools)),
	}

	for _, tool := range tools {
		if tool == nil || tool.Name == "" {
			return nil, fmt.Errorf("toolkit: tool without a name")
		}
		if tool.Fn == nil {
			return nil, fmt.Errorf("toolkit: tool %q has no operation", tool.Name)
		}
		if _, dup := c.byName[tool.Name]; dup {
			return nil, fmt.Errorf("toolkit: duplicate tool %q", tool.Name)
		}
		c.tools = append(c.tools, tool)
		c.byName[tool.Name] = tool
	}

	return c, nil
}

// Get returns the tool with the given name.
func (c *Catalog) Get(name string) (*Tool, bool) {
	tool, ok := c.byName[name]
	return tool, ok
}

// All returns every tool in catalog order.
func (c *Catalog) All() []*Tool {
	out := make([]*Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	return len(c.tools)
}

// ByCategory returns the tools in category, in catalog order.
func (c *Catalog) ByCategory(category Category) []*Tool {
	var out []*Tool
	for _, tool := range c.tools {
		if tool.Category == category {
			out = append(out, tool)
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []Category {
	seen := make(map[Category]bool)
	var out []Category
	for _, tool := range c.tools {
		if !seen[tool.Category] {
			seen[tool.Category] = true
			out = append(out, tool.Category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Execute runs the named tool. Missing inputs with a default are filled in
// before the operation sees them.
func (c *Catalog) Execute(ctx context.Context, name string, in Inputs) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	tool, ok := c.Get(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	in = in.withDefaults(tool.Inputs)
	for _, input := range tool.Inputs {
		if input.Required && !in.Has(input.Name) {
			return Result{}, &OperationError{Tool: name, Err: fmt.Errorf("%w: %s", ErrMissingInput, input.Name)}
		}
	}

	result, err := tool.Fn(ctx, in)
	if err != nil {
		return Result{}, &OperationError{Tool: name, Err: err}
	}
	return result, nil
}
