package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/archdiagram/pkg/errors"
)

const basicWebApp = `{
  "name": "Basic Web App",
  "nodes": [
    {"id": "alb", "type": "ALB"},
    {"id": "web1", "type": "EC2", "label": "Web Server 1"},
    {"id": "db", "type": "RDS"}
  ],
  "edges": [
    {"source": "alb", "target": "web1"},
    {"source": "web1", "target": "db"}
  ],
  "clusters": []
}`

func TestDecodeBasicWebApp(t *testing.T) {
	d, err := Decode([]byte(basicWebApp))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := &Diagram{
		Name: "Basic Web App",
		Nodes: []Node{
			{ID: "alb", Type: "ALB"},
			{ID: "web1", Type: "EC2", Label: "Web Server 1"},
			{ID: "db", Type: "RDS"},
		},
		Edges: []Edge{
			{Source: "alb", Target: "web1"},
			{Source: "web1", Target: "db"},
		},
		Clusters: []Cluster{},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
	if d.Direction() != LeftToRight {
		t.Errorf("Direction() = %v, want LR", d.Direction())
	}
	if got := d.Nodes[0].DisplayLabel(); got != "alb" {
		t.Errorf("DisplayLabel() = %q, want id fallback", got)
	}
}

func TestValidateDefaults(t *testing.T) {
	d, err := Validate(map[string]any{
		"nodes": []any{map[string]any{"id": "a", "type": "ec2", "label": nil}},
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if d.Name != DefaultName {
		t.Errorf("Name = %q, want %q", d.Name, DefaultName)
	}
	if len(d.Edges) != 0 || len(d.Clusters) != 0 {
		t.Errorf("expected empty edges and clusters, got %d/%d", len(d.Edges), len(d.Clusters))
	}
}

func TestValidateErrors(t *testing.T) {
	node := func(id, typ string) map[string]any { return map[string]any{"id": id, "type": typ} }
	nodes := []any{node("web1", "EC2"), node("web2", "EC2")}

	tests := []struct {
		name      string
		raw       map[string]any
		wantCode  errs.Code
		wantField string
	}{
		{
			name:      "nil schema",
			raw:       nil,
			wantCode:  errs.ErrCodeMissingField,
			wantField: "nodes",
		},
		{
			name:      "missing nodes",
			raw:       map[string]any{"name": "x"},
			wantCode:  errs.ErrCodeMissingField,
			wantField: "nodes",
		},
		{
			name:      "nodes not a list",
			raw:       map[string]any{"nodes": "web1"},
			wantCode:  errs.ErrCodeInvalidField,
			wantField: "nodes",
		},
		{
			name:      "node missing id",
			raw:       map[string]any{"nodes": []any{map[string]any{"type": "EC2"}}},
			wantCode:  errs.ErrCodeMissingField,
			wantField: "nodes[0].id",
		},
		{
			name:      "node missing type",
			raw:       map[string]any{"nodes": []any{node("web1", "EC2"), map[string]any{"id": "x"}}},
			wantCode:  errs.ErrCodeMissingField,
			wantField: "nodes[1].type",
		},
		{
			name:      "node id not a string",
			raw:       map[string]any{"nodes": []any{map[string]any{"id": 3, "type": "EC2"}}},
			wantCode:  errs.ErrCodeInvalidField,
			wantField: "nodes[0].id",
		},
		{
			name:      "node not an object",
			raw:       map[string]any{"nodes": []any{"web1"}},
			wantCode:  errs.ErrCodeInvalidField,
			wantField: "nodes[0]",
		},
		{
			name:      "duplicate node id",
			raw:       map[string]any{"nodes": []any{node("a", "EC2"), node("a", "RDS")}},
			wantCode:  errs.ErrCodeDuplicateID,
			wantField: "nodes[1].id",
		},
		{
			name: "edge missing target",
			raw: map[string]any{
				"nodes": nodes,
				"edges": []any{map[string]any{"source": "web1"}},
			},
			wantCode:  errs.ErrCodeMissingField,
			wantField: "edges[0].target",
		},
		{
			name: "edge unknown source",
			raw: map[string]any{
				"nodes": nodes,
				"edges": []any{map[string]any{"source": "x", "target": "web1"}},
			},
			wantCode:  errs.ErrCodeUnknownReference,
			wantField: "edges[0].source",
		},
		{
			name: "edge unknown target",
			raw: map[string]any{
				"nodes": nodes,
				"edges": []any{
					map[string]any{"source": "web1", "target": "web2"},
					map[string]any{"source": "web1", "target": "ghost"},
				},
			},
			wantCode:  errs.ErrCodeUnknownReference,
			wantField: "edges[1].target",
		},
		{
			name:      "edges not a list",
			raw:       map[string]any{"nodes": nodes, "edges": map[string]any{}},
			wantCode:  errs.ErrCodeInvalidField,
			wantField: "edges",
		},
		{
			name: "cluster missing label",
			raw: map[string]any{
				"nodes":    nodes,
				"clusters": []any{map[string]any{"id": "tier1", "nodes": []any{"web1"}}},
			},
			wantCode:  errs.ErrCodeMissingField,
			wantField: "clusters[0].label",
		},
		{
			name: "cluster missing nodes",
			raw: map[string]any{
				"nodes":    nodes,
				"clusters": []any{map[string]any{"id": "tier1", "label": "Web Tier"}},
			},
			wantCode:  errs.ErrCodeMissingField,
			wantField: "clusters[0].nodes",
		},
		{
			name: "cluster unknown member",
			raw: map[string]any{
				"nodes": nodes,
				"clusters": []any{map[string]any{
					"id": "tier1", "label": "Web Tier", "nodes": []any{"web1", "missing_node"},
				}},
			},
			wantCode:  errs.ErrCodeUnknownReference,
			wantField: "clusters[0].nodes[1]",
		},
		{
			name: "duplicate cluster id",
			raw: map[string]any{
				"nodes": nodes,
				"clusters": []any{
					map[string]any{"id": "tier1", "label": "A", "nodes": []any{"web1"}},
					map[string]any{"id": "tier1", "label": "B", "nodes": []any{"web2"}},
				},
			},
			wantCode:  errs.ErrCodeDuplicateID,
			wantField: "clusters[1].id",
		},
		{
			name:      "name not a string",
			raw:       map[string]any{"nodes": nodes, "name": 42},
			wantCode:  errs.ErrCodeInvalidField,
			wantField: "name",
		},
		{
			name:      "blank name",
			raw:       map[string]any{"nodes": nodes, "name": "  "},
			wantCode:  errs.ErrCodeInvalidField,
			wantField: "name",
		},
		{
			name:      "bad direction",
			raw:       map[string]any{"nodes": nodes, "attributes": map[string]any{"direction": "diagonal"}},
			wantCode:  errs.ErrCodeInvalidField,
			wantField: "attributes.direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Validate(tt.raw)
			if err == nil {
				t.Fatalf("Validate() = %+v, want error", d)
			}
			if !errs.IsSchemaValidation(err) {
				t.Errorf("IsSchemaValidation(%v) = false", err)
			}
			if got := errs.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %v, want %v (%v)", got, tt.wantCode, err)
			}
			var e *errs.Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if e.Field != tt.wantField {
				t.Errorf("field = %q, want %q", e.Field, tt.wantField)
			}
		})
	}
}

func TestValidateFirstViolationWins(t *testing.T) {
	// The node check runs before the edge check, so the missing type is reported
	// even though the edge reference is also broken.
	_, err := Validate(map[string]any{
		"nodes": []any{map[string]any{"id": "a"}},
		"edges": []any{map[string]any{"source": "x", "target": "a"}},
	})
	if !errs.Is(err, errs.ErrCodeMissingField) {
		t.Fatalf("err = %v, want SCHEMA_MISSING_FIELD", err)
	}
}

func TestValidateUnknownEdgeMessage(t *testing.T) {
	_, err := Validate(map[string]any{
		"nodes": []any{map[string]any{"id": "web1", "type": "EC2"}},
		"edges": []any{map[string]any{"source": "x", "target": "web1"}},
	})
	if err == nil || !strings.Contains(err.Error(), `"x"`) {
		t.Errorf("error %v should name the missing id", err)
	}
}

func TestValidateAttributes(t *testing.T) {
	d, err := Validate(map[string]any{
		"nodes":      []any{map[string]any{"id": "a", "type": "ec2"}},
		"attributes": map[string]any{"direction": "tb", "outformat": "jpg"},
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if d.Direction() != TopToBottom {
		t.Errorf("Direction() = %v, want TB", d.Direction())
	}
}

func TestValidateTypedSlices(t *testing.T) {
	d, err := Validate(map[string]any{
		"nodes": []map[string]any{{"id": "a", "type": "ec2"}, {"id": "b", "type": "s3"}},
		"clusters": []map[string]any{
			{"id": "c", "label": "C", "nodes": []string{"a", "b"}},
		},
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, d.Clusters[0].Nodes); diff != "" {
		t.Errorf("cluster nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	for _, in := range []string{"", "{", "[1,2]", `"text"`} {
		if _, err := Decode([]byte(in)); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("Decode(%q) error = %v, want INVALID_INPUT", in, err)
		}
	}
}

func TestRawRoundTrip(t *testing.T) {
	d, err := Decode([]byte(basicWebApp))
	if err != nil {
		t.Fatal(err)
	}
	d.Attributes.Direction = TopToBottom
	d.Clusters = []Cluster{{ID: "tier1", Label: "Web Tier", Nodes: []string{"web1"}}}

	again, err := Validate(d.Raw())
	if err != nil {
		t.Fatalf("Validate(Raw()) error = %v", err)
	}
	if diff := cmp.Diff(d, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, []byte(basicWebApp), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if len(d.Nodes) != 3 {
		t.Errorf("len(Nodes) = %d, want 3", len(d.Nodes))
	}

	if _, err := DecodeFile(filepath.Join(t.TempDir(), "missing.json")); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("DecodeFile(missing) error = %v, want INVALID_PATH", err)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"LR", LeftToRight, true},
		{"tb", TopToBottom, true},
		{" bt ", BottomToTop, true},
		{"Rl", RightToLeft, true},
		{"", "", false},
		{"up", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
