package nodetype

// Style holds the Graphviz attributes used to draw a node primitive.
type Style struct {
	Shape     string // Graphviz node shape
	FillColor string // fill colour (hex or X11 name)
	FontColor string // label colour
}

// Palette per AWS icon family.
var (
	styleCompute     = Style{Shape: "box3d", FillColor: "#F58536", FontColor: "black"}
	styleDatabase    = Style{Shape: "cylinder", FillColor: "#3B48CC", FontColor: "white"}
	styleStorage     = Style{Shape: "folder", FillColor: "#7AA116", FontColor: "white"}
	styleNetwork     = Style{Shape: "hexagon", FillColor: "#8C4FFF", FontColor: "white"}
	styleManagement  = Style{Shape: "note", FillColor: "#E7157B", FontColor: "white"}
	styleSecurity    = Style{Shape: "octagon", FillColor: "#DD344C", FontColor: "white"}
	styleIntegration = Style{Shape: "component", FillColor: "#E7157B", FontColor: "white"}
	styleFramework   = Style{Shape: "tab", FillColor: "#009688", FontColor: "white"}
)
