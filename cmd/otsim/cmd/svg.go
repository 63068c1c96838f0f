package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceSim/pkg/route"
)

var svgOutput string

var svgCmd = &cobra.Command{
	Use:   "svg <netlist file>",
	Short: "Render a netlist as a static SVG",
	Long: `Write an SVG picture of the netlist: element boxes on the layout grid
and the orthogonal wire routes between them. Netlists without stored
positions are arranged first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSvg,
}

func init() {
	svgCmd.Flags().StringVarP(&svgOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(svgCmd)
}

func runSvg(cmd *cobra.Command, args []string) error {
	n, err := loadNetlist(args[0])
	if err != nil {
		return fmt.Errorf("error loading netlist: %w", err)
	}
	if !n.Positioned() {
		for _, e := range layout.Arrange(n.Elements, n.Connections) {
			n.SetPosition(e.ID, e.X, e.Y)
		}
	}

	out := io.Writer(os.Stdout)
	if svgOutput != "" {
		f, err := os.Create(svgOutput)
		if err != nil {
			return fmt.Errorf("error creating %s: %w", svgOutput, err)
		}
		defer f.Close()
		out = f
	}

	writeSvg(out, n)
	if svgOutput != "" {
		fmt.Printf("Wrote %s\n", svgOutput)
	}
	return nil
}

const svgMargin = 40

func writeSvg(out io.Writer, n *netlist.Netlist) {
	var maxX, maxY float64
	for _, e := range n.Elements {
		maxX = math.Max(maxX, e.X+route.ElementWidth)
		maxY = math.Max(maxY, e.Y+route.ElementHeight)
	}

	fmt.Fprintf(out, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f">`+"\n",
		maxX+svgMargin, maxY+svgMargin)

	fmt.Fprintln(out, `  <g fill="none" stroke="#555" stroke-width="1.5">`)
	for _, c := range n.Connections {
		src, dst, ok := n.Endpoints(c.Name)
		if !ok {
			continue
		}
		p := route.Route(*src, *dst, c)
		fmt.Fprintf(out, `    <polyline points="%s"><title>%s</title></polyline>`+"\n",
			svgPoints(p.Points), svgEscape(c.Name))
	}
	fmt.Fprintln(out, `  </g>`)

	for _, e := range n.Elements {
		fmt.Fprintf(out, `  <rect x="%.0f" y="%.0f" width="%d" height="%d" fill="#fff" stroke="#000"/>`+"\n",
			e.X, e.Y, route.ElementWidth, route.ElementHeight)
		fmt.Fprintf(out, `  <text x="%.0f" y="%.0f" font-size="10" text-anchor="middle">%s</text>`+"\n",
			e.X+route.ElementWidth/2, e.Y+route.ElementHeight/2-2, svgEscape(e.Name))
		fmt.Fprintf(out, `  <text x="%.0f" y="%.0f" font-size="8" fill="#777" text-anchor="middle">%s</text>`+"\n",
			e.X+route.ElementWidth/2, e.Y+route.ElementHeight/2+10, svgEscape(string(e.Type)))
	}

	fmt.Fprintln(out, `</svg>`)
}

func svgPoints(points []route.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func svgEscape(s string) string {
	return svgEscaper.Replace(s)
}
