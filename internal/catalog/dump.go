package catalog

import (
	"encoding/json"
	"os"
)

// DumpToTmpFile writes jobs as indented JSON into a new temporary file and returns its name.
func DumpToTmpFile(jobs []Job) (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jobs); err != nil {
		return "", err
	}
	return file.Name(), nil
}
