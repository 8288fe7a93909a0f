package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-portal/internal/catalog"
	"github.com/spigell/job-portal/internal/filtering"
	"github.com/spigell/job-portal/internal/matching"
	"github.com/spigell/job-portal/internal/resume"
	"github.com/spigell/job-portal/internal/session"
)

const (
	PromptSelectResume    = "Select resume file"
	PromptUpload          = "Upload resume"
	PromptSearch          = "Search by title"
	PromptLocation        = "Filter by location"
	PromptShowJobs        = "Show jobs"
	PromptCheckMatch      = "Check match"
	PromptMatchAll        = "Check match for all shown jobs"
	PromptReportByCompany = "Report by company"
	PromptJobsToFile      = "Dump jobs to file"
	PromptExit            = "Exit"
	PromptBack            = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{
		PromptSelectResume, PromptUpload, PromptSearch, PromptLocation, PromptShowJobs,
		PromptCheckMatch, PromptMatchAll, PromptReportByCompany, PromptJobsToFile, PromptExit,
	},
	Size: 10,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive job-portal session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// interactive keeps the state of a single run command.
type interactive struct {
	cmd     *cobra.Command
	logger  *zap.Logger
	session *session.Session
	// seq of the last reported notice.
	seq int64
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	logger, config := setup()

	s := startSession(context.Background(), config, logger)
	ui := &interactive{cmd: cmd, logger: logger, session: s}
	ui.flush()

	if path := strings.TrimSpace(config.Resume); path != "" {
		if err := ui.selectResume(path); err != nil {
			logger.Warn("skipping configured resume", zap.Error(err))
		} else if state := ui.upload(); state != resume.StateIngested {
			logger.Warn("configured resume was not ingested, select or upload it again from the menu", zap.String("state", string(state)))
		}
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := ui.handleAction(action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func (ui *interactive) handleAction(action string) error {
	switch action {
	case PromptSelectResume:
		path, err := (&promptui.Prompt{
			Label: "Path to the resume PDF",
			Validate: func(input string) error {
				_, err := resume.OpenLocal(strings.TrimSpace(input))
				return err
			},
		}).Run()
		if err != nil {
			return err
		}
		return ui.selectResume(path)
	case PromptUpload:
		ui.upload()
		return nil
	case PromptSearch:
		search, err := (&promptui.Prompt{
			Label:   "Title contains",
			Default: ui.session.Snapshot().Query.Search,
		}).Run()
		if err != nil {
			return err
		}
		ui.session.SetSearch(search)
		ui.showJobs()
		return nil
	case PromptLocation:
		locations := ui.session.Snapshot().Locations
		_, location, err := (&promptui.Select{
			Label: "Choose a location",
			Items: locations,
		}).Run()
		if err != nil {
			return err
		}
		ui.session.SetLocation(location)
		ui.showJobs()
		return nil
	case PromptShowJobs:
		ui.showJobs()
		return nil
	case PromptCheckMatch:
		return ui.checkMatch()
	case PromptMatchAll:
		return ui.matchAll()
	case PromptReportByCompany:
		jobs := ui.session.Snapshot().Jobs
		pretty, _ := json.MarshalIndent(filtering.ReportByCompany(jobs), "", "  ")
		ui.logger.Info(string(pretty), zap.Int("jobs count", len(jobs)))
		return nil
	case PromptJobsToFile:
		filename, err := catalog.DumpToTmpFile(ui.session.Snapshot().Jobs)
		if err != nil {
			return fmt.Errorf("dump jobs to file: %w", err)
		}
		ui.logger.Info("dumping jobs to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		ui.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (ui *interactive) selectResume(path string) error {
	doc, err := resume.OpenLocal(strings.TrimSpace(path))
	if err != nil {
		return err
	}

	ui.session.SelectFile(doc)
	ui.logger.Info("resume selected", zap.String("file", doc.Name()))
	return nil
}

// upload ingests the selected resume, waits for the result and returns the resulting state.
// Rejections and failures are reported as notices and are not fatal.
func (ui *interactive) upload() resume.State {
	if err := ui.session.Upload(); err != nil {
		ui.flush()
		return ui.session.Snapshot().Candidate.State
	}

	ui.logger.Info("uploading resume")
	ui.session.Wait()
	ui.flush()

	candidate := ui.session.Snapshot().Candidate
	if candidate.State == resume.StateIngested {
		ui.logger.Info("resume ingested",
			zap.String("candidate_id", candidate.ID),
			zap.Int("text_length", len(candidate.Text)),
		)
	}
	return candidate.State
}

func (ui *interactive) showJobs() {
	snap := ui.session.Snapshot()

	for _, status := range filtering.Describe(filtering.Steps(snap.Query)) {
		ui.logger.Debug("filter", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled), zap.Any("details", status.Details))
	}

	renderJobs(ui.cmd.OutOrStdout(), snap.Jobs)
	ui.logger.Info("current list of jobs", zap.Int("count", len(snap.Jobs)), zap.Int("total", snap.Total))
}

func (ui *interactive) checkMatch() error {
	for {
		snap := ui.session.Snapshot()

		items := make([]string, 0, len(snap.Jobs)+1)
		for _, job := range snap.Jobs {
			label := filtering.Summary(job)
			if snap.Matches[job.ID] == matching.StatusPending {
				label += " [analyzing]"
			}
			items = append(items, label)
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
		}

		idx, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		jobID := snap.Jobs[idx].ID
		if err := ui.session.RequestMatch(jobID); err != nil {
			ui.flush()
			continue
		}

		ui.logger.Info("analyzing", zap.String("job_id", jobID))
		ui.session.Wait()
		ui.flush()

		for _, job := range ui.session.Snapshot().Jobs {
			if job.ID == jobID && job.Matched() {
				renderMatch(ui.cmd.OutOrStdout(), job)
			}
		}
	}
}

func (ui *interactive) matchAll() error {
	dispatched, err := ui.session.MatchAll()
	if err != nil {
		ui.flush()
		return nil
	}

	ui.logger.Info("analyzing shown jobs", zap.Int("count", dispatched))
	ui.session.Wait()
	ui.flush()
	ui.showJobs()
	return nil
}

func (ui *interactive) flush() {
	ui.seq = reportNotices(ui.logger, ui.session, ui.seq)
}
