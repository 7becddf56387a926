package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/imgajeed76/sheetview/internal/record"
)

// parseYAML reads a sequence of mappings. Decoding through yaml.Node
// keeps mapping keys in document order.
func parseYAML(ctx context.Context, data []byte) ([]*record.Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	seq := resolve(doc.Content[0])
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: top level is not a sequence", seq.Line)
	}

	records := make([]*record.Record, 0, len(seq.Content))
	for _, item := range seq.Content {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := yamlRecord(resolve(item))
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func yamlRecord(n *yaml.Node) (*record.Record, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: element is not a mapping", n.Line)
	}

	r := record.New()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := resolve(n.Content[i]), resolve(n.Content[i+1])
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping key is not a scalar", key.Line)
		}
		// merge keys (<<) are not expanded
		if key.Tag == "!!merge" {
			continue
		}
		v, err := yamlValue(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: field %q: %w", value.Line, key.Value, err)
		}
		r.Set(text(key.Value).AsString(), v)
	}
	return r, nil
}

func yamlValue(n *yaml.Node) (record.Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return record.Null(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return record.Value{}, err
			}
			return record.Bool(b), nil
		case "!!int", "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return record.Value{}, err
			}
			return record.Number(f), nil
		default:
			// strings, timestamps and binary keep their source text
			return text(n.Value), nil
		}
	case yaml.MappingNode, yaml.SequenceNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return record.Value{}, err
		}
		b, err := json.Marshal(jsonSafe(v))
		if err != nil {
			return record.Value{}, err
		}
		return record.Raw(string(b)), nil
	default:
		return record.Value{}, errors.New("unsupported node")
	}
}

// jsonSafe converts the map[string]any / map[any]any trees yaml.v3
// produces into something encoding/json accepts.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = jsonSafe(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = jsonSafe(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonSafe(e)
		}
		return out
	default:
		return t
	}
}
