package referenceframe

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/motionvalidity/utils"
)

// String prints a table of every node in depth first order, with columns of name, parent, kind, joint, origin and
// collision geometry.
func (g *Graph) String() string {
	t := table.NewWriter()
	t.SetTitle(g.name)
	t.AppendHeader(table.Row{"#", "Name", "Parent", "Kind", "Joint", "Translation", "Orientation", "Geometry"})
	t.AppendRow(table.Row{"0", World, "", "", "", "", "", ""})
	for i, n := range g.Nodes() {
		tra := n.origin().Point()
		aa := n.origin().Orientation().AxisAngles()
		joint := ""
		if n.Joint.Movable() {
			joint = fmt.Sprintf("%s [%.2f, %.2f]", n.Joint.Type, n.Joint.Limit.Min, n.Joint.Limit.Max)
		}
		geom := ""
		if n.HasGeometry() {
			geom = n.Geometry.ToConfig().String()
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%d", i+1),
			n.Name,
			n.parent.Name,
			nodeKind(n),
			joint,
			fmt.Sprintf("X:%.0f, Y:%.0f, Z:%.0f", tra.X, tra.Y, tra.Z),
			fmt.Sprintf("Theta:%.2f, RX:%.2f, RY:%.2f, RZ:%.2f", utils.RadToDeg(aa.Theta), aa.RX, aa.RY, aa.RZ),
			geom,
		})
	}
	return t.Render()
}

func nodeKind(n *Node) string {
	switch {
	case n.IsObstacle:
		return "obstacle"
	case n.IsObject:
		return "object"
	default:
		return "link"
	}
}
