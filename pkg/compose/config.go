package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Topology Tree
// =============================================================================

// Kind tags a Node as a scalar, list, or map.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMap
)

// Node is one value in the parsed topology tree. The tree is built once at
// load time, with variable expansion already applied, and never mutated
// afterwards.
type Node struct {
	Kind   Kind
	Value  any      // scalar only: string, int64, float64, bool, or nil
	Items  []*Node  // list only
	Keys   []string // map only, in declared order
	Fields map[string]*Node
}

// Field returns the named entry of a map node, or nil.
func (n *Node) Field(name string) *Node {
	if n == nil || n.Kind != KindMap {
		return nil
	}
	return n.Fields[name]
}

// Str returns the scalar string value and whether the node is a string
// scalar.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != KindScalar {
		return "", false
	}
	s, ok := n.Value.(string)
	return s, ok
}

// String coerces a scalar node to its string form. Non-scalar nodes and nil
// scalars coerce to "".
func (n *Node) String() string {
	if n == nil || n.Kind != KindScalar {
		return ""
	}
	switch v := n.Value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Bool reports whether the node is a true boolean scalar.
func (n *Node) Bool() bool {
	if n == nil || n.Kind != KindScalar {
		return false
	}
	b, _ := n.Value.(bool)
	return b
}

// =============================================================================
// Variable Expansion
// =============================================================================

// LookupFunc resolves a variable name, reporting whether it is set. The
// distinction between unset and set-but-empty matters for the ${VAR-default}
// form.
type LookupFunc func(name string) (string, bool)

// varPattern matches, in one alternation, ${VAR}, ${VAR:-default},
// ${VAR-default}, and bare $VAR. A single replacement pass over both forms
// guarantees expanded output is never expanded again.
//
// Groups: 1 braced name, 2 operator (":-" or "-"), 3 default, 4 bare name.
var varPattern = regexp.MustCompile(`\$(?:\{([A-Za-z_][A-Za-z0-9_]*)(?:(:?-)([^}]*))?\}|([A-Za-z_][A-Za-z0-9_]*))`)

// expand substitutes variable references in s using lookup. Both the
// ${VAR:-default} and ${VAR-default} operators key on set-vs-unset: a set
// variable wins even when its value is empty, the default applies only when
// the variable is unset. Bare references resolve to "" when unset.
func expand(s string, lookup LookupFunc) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := varPattern.FindStringSubmatch(match)
		name := sub[1]
		if name == "" {
			name = sub[4]
		}

		val, set := lookup(name)
		if set {
			return val
		}
		if sub[2] != "" {
			return sub[3]
		}
		return ""
	})
}

// =============================================================================
// Config Loading
// =============================================================================

// Config is a loaded topology: the expanded spec tree plus the directory
// relative host paths resolve against. It is immutable after Load.
type Config struct {
	WorkingDir string
	File       string
	Root       *Node

	services *Node
}

// Load reads and parses a topology document from file, resolved relative to
// workingDir. String values are expanded against the process environment.
func Load(workingDir, file string) (*Config, error) {
	path := filepath.Join(workingDir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(path, "failed to read topology", err)
	}
	cfg, err := parse(data, workingDir, file, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse parses an in-memory topology document. Relative host paths resolve
// against workingDir.
func Parse(data []byte, workingDir string) (*Config, error) {
	return parse(data, workingDir, "", os.LookupEnv)
}

func parse(data []byte, workingDir, file string, lookup LookupFunc) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewConfigError(file, "invalid YAML syntax", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, NewConfigError(file, "topology is empty", ErrNoServices)
	}

	root, err := buildNode(doc.Content[0], lookup)
	if err != nil {
		return nil, NewConfigError(file, err.Error(), err)
	}

	services := root.Field("services")
	if services == nil || services.Kind != KindMap || len(services.Keys) == 0 {
		return nil, NewConfigError(file, "topology must define a services map", ErrNoServices)
	}

	return &Config{
		WorkingDir: workingDir,
		File:       file,
		Root:       root,
		services:   services,
	}, nil
}

// ServiceNames returns the declared services in document order.
func (c *Config) ServiceNames() []string {
	names := make([]string, len(c.services.Keys))
	copy(names, c.services.Keys)
	return names
}

// Service returns the spec node for a declared service.
func (c *Config) Service(name string) (*Node, error) {
	svc := c.services.Field(name)
	if svc == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrServiceNotFound)
	}
	return svc, nil
}

// buildNode converts a yaml.Node into the immutable topology tree, expanding
// variable references in every string scalar as it goes.
func buildNode(n *yaml.Node, lookup LookupFunc) (*Node, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return buildNode(n.Alias, lookup)

	case yaml.MappingNode:
		node := &Node{
			Kind:   KindMap,
			Fields: make(map[string]*Node, len(n.Content)/2),
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			child, err := buildNode(n.Content[i+1], lookup)
			if err != nil {
				return nil, err
			}
			if _, dup := node.Fields[key]; !dup {
				node.Keys = append(node.Keys, key)
			}
			node.Fields[key] = child
		}
		return node, nil

	case yaml.SequenceNode:
		node := &Node{Kind: KindList, Items: make([]*Node, 0, len(n.Content))}
		for _, item := range n.Content {
			child, err := buildNode(item, lookup)
			if err != nil {
				return nil, err
			}
			node.Items = append(node.Items, child)
		}
		return node, nil

	case yaml.ScalarNode:
		return buildScalar(n, lookup)

	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d", n.Kind)
	}
}

func buildScalar(n *yaml.Node, lookup LookupFunc) (*Node, error) {
	switch n.Tag {
	case "!!null":
		return &Node{Kind: KindScalar, Value: nil}, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", n.Value)
		}
		return &Node{Kind: KindScalar, Value: b}, nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", n.Value)
		}
		return &Node{Kind: KindScalar, Value: i}, nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", n.Value)
		}
		return &Node{Kind: KindScalar, Value: f}, nil
	default:
		return &Node{Kind: KindScalar, Value: expand(n.Value, lookup)}, nil
	}
}
