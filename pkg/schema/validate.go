package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	errs "github.com/matzehuels/archdiagram/pkg/errors"
)

// Validate checks a raw schema object and converts it to a [Diagram].
//
// Checks run in a fixed order and the first violation is returned:
//  1. nodes is present and is a list
//  2. every node has a string id and type, and ids are unique
//  3. every edge has source and target, both declared node ids
//  4. every cluster has id, label and a nodes list of declared node ids,
//     and cluster ids are unique
//  5. the optional name and attributes are well-formed
//
// Every failure is an *errors.Error in the SCHEMA_ class with Field set to
// the offending path, e.g. "edges[0].source".
func Validate(raw map[string]any) (*Diagram, error) {
	if raw == nil {
		return nil, errs.New(errs.ErrCodeMissingField, "missing required field %q", "nodes").At("nodes")
	}

	v := validator{declared: make(map[string]int)}
	d := &Diagram{}

	var err error
	if d.Nodes, err = v.nodes(raw); err != nil {
		return nil, err
	}
	if d.Edges, err = v.edges(raw); err != nil {
		return nil, err
	}
	if d.Clusters, err = v.clusters(raw); err != nil {
		return nil, err
	}
	if d.Name, err = v.name(raw); err != nil {
		return nil, err
	}
	if d.Attributes, err = v.attributes(raw); err != nil {
		return nil, err
	}
	return d, nil
}

// Decode parses JSON data and validates the resulting object.
// Malformed JSON fails with INVALID_INPUT; structural problems fail as in [Validate].
func Decode(data []byte) (*Diagram, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode schema")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "schema must be a JSON object, got %s", typeName(raw))
	}
	return Validate(obj)
}

// DecodeFile reads and validates the schema stored at path.
func DecodeFile(path string) (*Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read schema %s", path)
	}
	return Decode(data)
}

// validator carries the declared node ids across the ordered checks.
type validator struct {
	declared map[string]int // node id -> index in nodes
}

func (v *validator) nodes(raw map[string]any) ([]Node, error) {
	val, ok := raw["nodes"]
	if !ok || val == nil {
		return nil, missing("nodes", "nodes")
	}
	items, ok := asList(val)
	if !ok {
		return nil, invalid("nodes", "nodes must be a list, got %s", typeName(val))
	}

	nodes := make([]Node, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("nodes[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, invalid(path, "node must be an object, got %s", typeName(item))
		}
		id, err := requiredString(obj, "id", path)
		if err != nil {
			return nil, err
		}
		typ, err := requiredString(obj, "type", path)
		if err != nil {
			return nil, err
		}
		label, err := optionalString(obj, "label", path)
		if err != nil {
			return nil, err
		}
		if first, dup := v.declared[id]; dup {
			return nil, errs.New(errs.ErrCodeDuplicateID,
				"duplicate node id %q (first declared at nodes[%d])", id, first).At(path + ".id")
		}
		v.declared[id] = i
		nodes = append(nodes, Node{ID: id, Type: typ, Label: label})
	}
	return nodes, nil
}

func (v *validator) edges(raw map[string]any) ([]Edge, error) {
	items, err := optionalList(raw, "edges")
	if err != nil {
		return nil, err
	}

	edges := make([]Edge, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("edges[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, invalid(path, "edge must be an object, got %s", typeName(item))
		}
		src, err := requiredString(obj, "source", path)
		if err != nil {
			return nil, err
		}
		dst, err := requiredString(obj, "target", path)
		if err != nil {
			return nil, err
		}
		if err := v.reference(src, path+".source"); err != nil {
			return nil, err
		}
		if err := v.reference(dst, path+".target"); err != nil {
			return nil, err
		}
		edges = append(edges, Edge{Source: src, Target: dst})
	}
	return edges, nil
}

func (v *validator) clusters(raw map[string]any) ([]Cluster, error) {
	items, err := optionalList(raw, "clusters")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(items))
	clusters := make([]Cluster, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("clusters[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, invalid(path, "cluster must be an object, got %s", typeName(item))
		}
		id, err := requiredString(obj, "id", path)
		if err != nil {
			return nil, err
		}
		label, err := requiredString(obj, "label", path)
		if err != nil {
			return nil, err
		}
		val, ok := obj["nodes"]
		if !ok || val == nil {
			return nil, missing(path+".nodes", "nodes")
		}
		members, ok := asList(val)
		if !ok {
			return nil, invalid(path+".nodes", "cluster nodes must be a list, got %s", typeName(val))
		}

		ids := make([]string, 0, len(members))
		for j, m := range members {
			mpath := fmt.Sprintf("%s.nodes[%d]", path, j)
			id, ok := m.(string)
			if !ok {
				return nil, invalid(mpath, "cluster member must be a node id string, got %s", typeName(m))
			}
			if err := v.reference(id, mpath); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}

		if first, dup := seen[id]; dup {
			return nil, errs.New(errs.ErrCodeDuplicateID,
				"duplicate cluster id %q (first declared at clusters[%d])", id, first).At(path + ".id")
		}
		seen[id] = i
		clusters = append(clusters, Cluster{ID: id, Label: label, Nodes: ids})
	}
	return clusters, nil
}

func (v *validator) name(raw map[string]any) (string, error) {
	val, ok := raw["name"]
	if !ok || val == nil {
		return DefaultName, nil
	}
	name, ok := val.(string)
	if !ok {
		return "", invalid("name", "name must be a string, got %s", typeName(val))
	}
	if err := errs.ValidateDiagramName(name); err != nil {
		return "", err
	}
	return name, nil
}

func (v *validator) attributes(raw map[string]any) (Attributes, error) {
	val, ok := raw["attributes"]
	if !ok || val == nil {
		return Attributes{}, nil
	}
	obj, ok := val.(map[string]any)
	if !ok {
		return Attributes{}, invalid("attributes", "attributes must be an object, got %s", typeName(val))
	}

	var attrs Attributes
	if dv, ok := obj["direction"]; ok && dv != nil {
		s, ok := dv.(string)
		if !ok {
			return Attributes{}, invalid("attributes.direction", "direction must be a string, got %s", typeName(dv))
		}
		dir, ok := ParseDirection(s)
		if !ok {
			return Attributes{}, invalid("attributes.direction", "unsupported direction %q (must be one of: LR, TB, BT, RL)", s)
		}
		attrs.Direction = dir
	}
	return attrs, nil
}

func (v *validator) reference(id, path string) error {
	if _, ok := v.declared[id]; !ok {
		return errs.New(errs.ErrCodeUnknownReference, "unknown node reference %q", id).At(path)
	}
	return nil
}

// =============================================================================
// Field helpers
// =============================================================================

func missing(path, field string) *errs.Error {
	return errs.New(errs.ErrCodeMissingField, "missing required field %q", field).At(path)
}

func invalid(path, format string, args ...any) *errs.Error {
	return errs.New(errs.ErrCodeInvalidField, format, args...).At(path)
}

func requiredString(obj map[string]any, key, path string) (string, error) {
	val, ok := obj[key]
	if !ok || val == nil {
		return "", missing(path+"."+key, key)
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return "", invalid(path+"."+key, "%s must be a non-empty string, got %s", key, typeName(val))
	}
	return s, nil
}

func optionalString(obj map[string]any, key, path string) (string, error) {
	val, ok := obj[key]
	if !ok || val == nil {
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return "", invalid(path+"."+key, "%s must be a string, got %s", key, typeName(val))
	}
	return s, nil
}

func optionalList(raw map[string]any, key string) ([]any, error) {
	val, ok := raw[key]
	if !ok || val == nil {
		return nil, nil
	}
	items, ok := asList(val)
	if !ok {
		return nil, invalid(key, "%s must be a list, got %s", key, typeName(val))
	}
	return items, nil
}

// asList accepts the list shapes produced by encoding/json as well as the
// typed slices Go callers tend to build by hand.
func asList(val any) ([]any, bool) {
	switch l := val.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func typeName(val any) string {
	switch val.(type) {
	case nil:
		return "null"
	case string:
		if val.(string) == "" {
			return "empty string"
		}
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64:
		return "number"
	case map[string]any:
		return "object"
	case []any, []map[string]any, []string:
		return "list"
	}
	return fmt.Sprintf("%T", val)
}
