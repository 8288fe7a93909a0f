package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/job-portal/internal/catalog"
)

// AllLocations is the location selector that keeps every posting.
const AllLocations = "All Locations"

// Filter represents a single filtering step applied to catalog jobs.
type Filter interface {
	Name() string
	IsEnabled() bool

	// Apply returns the kept jobs in their original order. The input is never modified.
	Apply(jobs []catalog.Job) ([]catalog.Job, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Query is the user filter state.
type Query struct {
	Search   string
	Location string
}

// DefaultQuery matches the whole catalog.
func DefaultQuery() Query {
	return Query{Location: AllLocations}
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Steps builds the filters for the query: title first, then location.
func Steps(q Query) []Filter {
	return []Filter{
		NewTitle(q.Search),
		NewLocation(q.Location),
	}
}

// Visible returns the jobs that satisfy both the search term and the location selector.
func Visible(jobs []catalog.Job, q Query) []catalog.Job {
	return Run(nil, Steps(q), jobs)
}

// Run executes the supplied filters sequentially. Disabled filters are skipped.
func Run(logger *zap.Logger, steps []Filter, jobs []catalog.Job) []catalog.Job {
	out := make([]catalog.Job, len(jobs))
	copy(out, jobs)

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}

		next, info := step.Apply(out)
		if logger != nil {
			logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}
		out = next
	}

	return out
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func keep(jobs []catalog.Job, pred func(catalog.Job) bool) ([]catalog.Job, Step) {
	kept := make([]catalog.Job, 0, len(jobs))
	for _, job := range jobs {
		if pred(job) {
			kept = append(kept, job)
		}
	}

	return kept, Step{Initial: len(jobs), Dropped: len(jobs) - len(kept), Left: len(kept)}
}
