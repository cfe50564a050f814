package drawer

import "time"

// Drawer renders the stages a run went through and how long each one took.
type Drawer interface {
	// AddStage adds a stage vertex to the graph.
	AddStage(stageName string) error
	// AddLink adds a directed link between consecutive stages.
	AddLink(parentStageName, childStageName string) error
	// SetDuration records how long a stage took; it colours the incoming
	// link on a heat scale relative to the other stages.
	SetDuration(stageName string, elapsed time.Duration) error
	// Draw writes the graph out.
	Draw() error
}
