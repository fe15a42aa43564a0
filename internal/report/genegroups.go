package report

import (
	"encoding/xml"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	_ "image/png"
)

// DiagramImageWidth is the width, in pixels, the report renders pathway
// diagrams at. Region geometry is scaled from the source image width to
// this width.
const DiagramImageWidth = 800.0

// ViewRect is one diagram region in report coordinates, top-left anchored.
type ViewRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GroupGene is one gene shown in a diagram region. Core genes drive the
// pathway's enrichment score; non-core genes merely appear in the region
// label and the contrast universe.
type GroupGene struct {
	Name string `json:"name"`
	Core bool   `json:"core"`
}

// GeneGroup is one hoverable diagram region with its genes.
type GeneGroup struct {
	View  ViewRect    `json:"view"`
	Core  bool        `json:"core"`
	Genes []GroupGene `json:"genes"`
}

// KGML document subset: gene entries and their graphics.
type kgmlDoc struct {
	XMLName xml.Name    `xml:"pathway"`
	Entries []kgmlEntry `xml:"entry"`
}

type kgmlEntry struct {
	Type     string        `xml:"type,attr"`
	Name     string        `xml:"name,attr"`
	Graphics []kgmlGraphic `xml:"graphics"`
}

type kgmlGraphic struct {
	Name   string `xml:"name,attr"`
	Type   string `xml:"type,attr"`
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
}

// ParseGeneGroups parses a pathway diagram's KGML description into
// hoverable gene groups. idToName maps the pathway's core member ids to
// display names; contrastGenes is the set of gene names present in the
// contrast table, used to flag non-core genes from region labels.
func ParseGeneGroups(r io.Reader, imageWidth float64, speciesPrefix string, idToName map[string]string, contrastGenes map[string]struct{}) ([]GeneGroup, error) {
	var doc kgmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode diagram xml: %w", err)
	}

	prefix := speciesPrefix + ":"
	var groups []GeneGroup

	for _, entry := range doc.Entries {
		if entry.Type != "gene" || entry.Name == "" || len(entry.Graphics) == 0 {
			continue
		}
		graphics := entry.Graphics[0]

		var genes []GroupGene
		seen := make(map[string]bool)

		for _, name := range strings.Fields(entry.Name) {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			id := strings.TrimPrefix(name, prefix)
			geneName, ok := idToName[id]
			if !ok {
				continue
			}
			if !seen[geneName] {
				seen[geneName] = true
				genes = append(genes, GroupGene{Name: geneName, Core: true})
			}
		}

		// The region label may name additional genes from the contrast
		// universe that are not core members.
		if graphics.Name != "" {
			label := strings.TrimSuffix(graphics.Name, "...")
			for _, geneName := range strings.Split(label, ", ") {
				if _, inContrast := contrastGenes[geneName]; !inContrast {
					continue
				}
				if !seen[geneName] {
					seen[geneName] = true
					genes = append(genes, GroupGene{Name: geneName, Core: false})
				}
			}
		}

		if len(genes) == 0 {
			continue
		}

		view, ok := viewRect(graphics, imageWidth)
		if !ok {
			continue
		}

		core := false
		for _, g := range genes {
			if g.Core {
				core = true
				break
			}
		}

		groups = append(groups, GeneGroup{
			View:  view,
			Core:  core,
			Genes: genes,
		})
	}

	return groups, nil
}

// viewRect scales a rect graphic to report coordinates, shifting the
// x,y anchor from center to top-left. Line graphics have no rect.
func viewRect(g kgmlGraphic, imageWidth float64) (ViewRect, bool) {
	if g.Type == "line" || imageWidth <= 0 {
		return ViewRect{}, false
	}

	vals := make([]float64, 4)
	for i, s := range []string{g.X, g.Y, g.Width, g.Height} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return ViewRect{}, false
		}
		vals[i] = v
	}

	scale := DiagramImageWidth / imageWidth
	x, y, w, h := vals[0]*scale, vals[1]*scale, vals[2]*scale, vals[3]*scale

	return ViewRect{
		X:      x - w/2,
		Y:      y - h/2,
		Width:  w,
		Height: h,
	}, true
}

// ImageWidth returns the pixel width of a PNG image file.
func ImageWidth(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open diagram image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("decode diagram image: %w", err)
	}
	return float64(cfg.Width), nil
}
