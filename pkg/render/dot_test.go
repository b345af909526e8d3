package render

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/archdiagram/pkg/schema"
)

func TestToDOT(t *testing.T) {
	g := buildGraph(t, &schema.Diagram{
		Name: "Event Pipeline",
		Nodes: []schema.Node{
			{ID: "api", Type: "APIGateway", Label: "Public API"},
			{ID: "fn", Type: "Lambda"},
			{ID: "queue", Type: "SQS"},
		},
		Edges: []schema.Edge{
			{Source: "api", Target: "fn"},
			{Source: "fn", Target: "queue"},
		},
		Clusters:   []schema.Cluster{{ID: "compute", Label: "Compute", Nodes: []string{"fn"}}},
		Attributes: schema.Attributes{Direction: schema.TopToBottom},
	})

	dot := ToDOT(g, Options{})
	for _, want := range []string{
		`label="Event Pipeline";`,
		"rankdir=TB;",
		`subgraph "cluster_compute" {`,
		`label="Compute";`,
		`"fn" [label="fn", shape=box3d`,
		`"api" [label="Public API", shape=hexagon`,
		`"api" -> "fn";`,
		`"fn" -> "queue";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Cluster members are emitted inside the subgraph, not at top level.
	if strings.Count(dot, `"fn" [`) != 1 {
		t.Errorf("fn should be declared exactly once:\n%s", dot)
	}
	cluster := dot[strings.Index(dot, "subgraph"):]
	cluster = cluster[:strings.Index(cluster, "  }\n")]
	if !strings.Contains(cluster, `"fn" [`) || strings.Contains(cluster, `"api" [`) {
		t.Errorf("cluster body has wrong members:\n%s", cluster)
	}
}

func TestToDOTOptions(t *testing.T) {
	g := buildGraph(t, &schema.Diagram{Nodes: []schema.Node{{ID: "bucket", Type: "S3"}}})
	dot := ToDOT(g, Options{Detailed: true, FontName: "Helvetica"})

	if !strings.Contains(dot, `label="bucket\ns3"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `fontname="Helvetica"`) {
		t.Errorf("font missing:\n%s", dot)
	}
	if !strings.Contains(dot, "rankdir=LR;") {
		t.Errorf("default direction missing:\n%s", dot)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\dir`, `"C:\\dir"`},
		{"two\nlines", `"two\nlines"`},
		{"tab\there", `"tab here"`},
		{"soft\u00adhyphen", `"softhyphen"`},
		{"bell\x07", `"bell"`},
		{"Zürich ☁", `"Zürich ☁"`},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToDOTControlCharacters(t *testing.T) {
	g := buildGraph(t, &schema.Diagram{
		Nodes:    []schema.Node{{ID: "web", Type: "EC2", Label: "tab\there"}},
		Clusters: []schema.Cluster{{ID: "app", Label: "App\u00adTier", Nodes: []string{"web"}}},
	})
	dot := ToDOT(g, Options{})
	for _, want := range []string{`label="tab here"`, `label="AppTier";`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `\t`) || strings.Contains(dot, `\u00ad`) {
		t.Errorf("DOT contains Go escapes:\n%s", dot)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Basic Web App", "basic_web_app"},
		{"Serverless API", "serverless_api"},
		{"already_slugged", "already_slugged"},
		{"Prod/Staging VPC", "prod_staging_vpc"},
		{`a\b:c*d?e"f<g>h|i`, "a_b_c_d_e_f_g_h_i"},
		{"tab\there", "tab_here"},
		{"..", "diagram"},
		{"", "diagram"},
		{"Ünïcode Näme", "ünïcode_näme"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	got, err := OutputPath(dir, "Basic Web App")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "basic_web_app.png"); got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}

	rel, err := OutputPath(".", "x")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(rel) {
		t.Errorf("OutputPath(.) = %q, want absolute", rel)
	}
}
