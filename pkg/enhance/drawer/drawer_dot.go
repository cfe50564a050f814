package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/rawstory/enhance/internal/store"
)

// DOTDrawer renders the stage graph of a run as a Graphviz DOT file, with
// per-stage durations as labels and link colours on a blue-to-red heat scale.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	store       store.StageStore[string, string]
	durations   map[string]time.Duration
	parents     map[string]string
	dotFileName string
}

// NewDOTDrawer creates a drawer writing to dotFileName.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	st := store.NewMemoryStore[string, string]()

	return &DOTDrawer{
		dotFileName: dotFileName,
		store:       st,
		graph:       graph.NewWithStore(graph.StringHash, st, graph.Directed()),
		durations:   make(map[string]time.Duration),
		parents:     make(map[string]string),
	}
}

// AddStage adds a stage vertex to the graph.
func (d *DOTDrawer) AddStage(stageName string) error {
	err := d.graph.AddVertex(stageName)
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a directed link between consecutive stages.
func (d *DOTDrawer) AddLink(parentStageName, childStageName string) error {
	err := d.graph.AddEdge(parentStageName, childStageName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentStageName, childStageName)
	}

	d.parents[childStageName] = parentStageName

	return nil
}

// SetDuration records the elapsed time of a stage. Vertices already exist at
// this point, so the label is set through the store rather than a new vertex.
func (d *DOTDrawer) SetDuration(stageName string, elapsed time.Duration) error {
	if _, _, err := d.graph.VertexWithProperties(stageName); err != nil {
		return errors.Wrap(err, "unable to get vertex properties")
	}

	d.store.UpdateVertex(stageName, func(properties *graph.VertexProperties) {
		if properties.Attributes == nil {
			properties.Attributes = make(map[string]string)
		}
		properties.Attributes["xlabel"] = elapsed.String()
	})

	d.durations[stageName] = elapsed

	return nil
}

// Draw colours the links relative to the recorded durations and writes the
// DOT file.
func (d *DOTDrawer) Draw() error {
	err := d.applyHeatColors()
	if err != nil {
		return errors.Wrap(err, "unable to colour links")
	}

	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to render dot file %s", d.dotFileName)
	}

	return nil
}

const maxRGB = 240

// applyHeatColors maps each stage duration onto a red-to-blue ramp, red for
// the slowest stage, and colours the stage's incoming link.
func (d *DOTDrawer) applyHeatColors() error {
	if len(d.durations) == 0 {
		return nil
	}

	sorted := make([]time.Duration, 0, len(d.durations))
	for _, elapsed := range d.durations {
		sorted = append(sorted, elapsed)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] > sorted[j]
	})

	maxValue := sorted[0]
	minValue := sorted[len(sorted)-1]

	for stageName, elapsed := range d.durations {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(elapsed-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := -maxRGB*fraction + maxRGB

		heat, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return errors.Wrap(err, "unable to get colour")
		}

		parent, ok := d.parents[stageName]
		if !ok {
			continue
		}

		err = d.graph.UpdateEdge(parent, stageName,
			graph.EdgeAttribute("label", elapsed.String()),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", heat.ToHEX().String()),
		)
		if err != nil {
			return errors.Wrap(err, "unable to update edge")
		}
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option for the [dot] function.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func generateDOT[K comparable, T any](gra graph.Graph[K, T], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for vertex, adjacencies := range adjacencyMap {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)

		if xlabel, ok := sourceProperties.Attributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(sourceProperties.Attributes, "xlabel")
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceProperties.Attributes,
			HTMLAttributes:   htmlAttributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		for adjacency, edge := range adjacencies {
			stmt := statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			}
			desc.Statements = append(desc.Statements, stmt)
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
