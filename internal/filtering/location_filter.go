package filtering

import (
	"github.com/spigell/job-portal/internal/catalog"
)

type locationFilter struct {
	location string
}

// NewLocation creates a filter that keeps jobs located exactly at location.
// The AllLocations selector disables the filter.
func NewLocation(location string) Filter {
	return &locationFilter{location: location}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) IsEnabled() bool { return f.location != AllLocations }

func (f *locationFilter) Apply(jobs []catalog.Job) ([]catalog.Job, Step) {
	return keep(jobs, func(job catalog.Job) bool {
		return job.Location == f.location
	})
}

func (f *locationFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Details: map[string]string{"location": f.location},
	}
}

// AvailableLocations returns the AllLocations selector followed by every distinct
// job location in first-seen order.
func AvailableLocations(jobs []catalog.Job) []string {
	locations := []string{AllLocations}
	seen := map[string]struct{}{AllLocations: {}}

	for _, job := range jobs {
		if _, ok := seen[job.Location]; ok {
			continue
		}
		seen[job.Location] = struct{}{}
		locations = append(locations, job.Location)
	}

	return locations
}
