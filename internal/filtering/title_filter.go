package filtering

import (
	"strings"

	"github.com/spigell/job-portal/internal/catalog"
)

type titleFilter struct {
	search string
}

// NewTitle creates a filter that keeps jobs whose title contains search, ignoring case.
func NewTitle(search string) Filter {
	return &titleFilter{search: search}
}

func (f *titleFilter) Name() string { return "title" }

func (f *titleFilter) IsEnabled() bool { return f.search != "" }

func (f *titleFilter) Apply(jobs []catalog.Job) ([]catalog.Job, Step) {
	needle := strings.ToLower(f.search)
	return keep(jobs, func(job catalog.Job) bool {
		return strings.Contains(strings.ToLower(job.Title), needle)
	})
}

func (f *titleFilter) Status() Status {
	details := map[string]string{}
	if f.search != "" {
		details["search"] = f.search
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Details: details}
}
