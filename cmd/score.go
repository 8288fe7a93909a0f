package cmd

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-portal/internal/catalog"
	"github.com/spigell/job-portal/internal/matching"
	"github.com/spigell/job-portal/internal/resume"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Upload the resume and match it against every visible job",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func score(cmd *cobra.Command) {
	logger, config := setup()

	path := strings.TrimSpace(config.Resume)
	if path == "" {
		logger.Fatal("resume is required", zap.String("hint", "pass --resume or set the 'resume' key in the configuration file"))
	}

	doc, err := resume.OpenLocal(path)
	if err != nil {
		logger.Fatal("opening resume", zap.Error(err))
	}

	s := startSession(context.Background(), config, logger)
	seq := reportNotices(logger, s, 0)

	if snap := s.Snapshot(); len(snap.Jobs) == 0 {
		logger.Info("exiting", zap.String("reason", "no jobs match the filters"), zap.Int("catalog", snap.Total))
		return
	}

	s.SelectFile(doc)
	if err := s.Upload(); err != nil {
		logger.Fatal("uploading resume", zap.Error(err))
	}
	s.Wait()
	seq = reportNotices(logger, s, seq)

	candidate := s.Snapshot().Candidate
	if candidate.State != resume.StateIngested {
		logger.Fatal("resume was not ingested", zap.String("state", string(candidate.State)))
	}

	dispatched, err := s.MatchAll()
	if err != nil {
		logger.Fatal("requesting matches", zap.Error(err))
	}
	logger.Info("matching resume against jobs", zap.Int("count", dispatched), zap.String("candidate_id", candidate.ID))

	s.Wait()
	reportNotices(logger, s, seq)

	snap := s.Snapshot()
	jobs := make([]catalog.Job, 0, len(snap.Jobs))
	for _, job := range snap.Jobs {
		if snap.Matches[job.ID] == matching.StatusSucceeded {
			jobs = append(jobs, job)
		}
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Match.Score > jobs[j].Match.Score
	})

	out := cmd.OutOrStdout()
	renderJobs(out, jobs)
	for _, job := range jobs {
		renderMatch(out, job)
	}
}
