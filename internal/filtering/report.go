package filtering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/job-portal/internal/catalog"
)

// ReportByCompany groups jobs by company, including match results when present.
func ReportByCompany(jobs []catalog.Job) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range jobs {
		key := job.Company
		if key == "" {
			key = "unknown company"
		}

		entry := map[string]string{
			"id":       job.ID,
			"title":    job.Title,
			"location": job.Location,
		}
		if job.Match != nil {
			entry["match_score"] = strconv.FormatFloat(job.Match.Score, 'f', -1, 64)
			entry["explanation"] = job.Match.Explanation
			entry["resume_skills"] = strings.Join(job.Match.ResumeSkills, ", ")
			entry["job_skills"] = strings.Join(job.Match.JobSkills, ", ")
		}

		report[key] = append(report[key], entry)
	}
	return report
}

// Summary renders a one line description of a job for prompts and listings.
func Summary(job catalog.Job) string {
	line := fmt.Sprintf("%s %s / %s / %s", job.ID, job.Title, job.Company, job.Location)
	if job.Match != nil {
		line += fmt.Sprintf(" [match %s%%]", strconv.FormatFloat(job.Match.Score, 'f', -1, 64))
	}
	return line
}
