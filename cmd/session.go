package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-portal/internal/catalog"
	"github.com/spigell/job-portal/internal/filtering"
	"github.com/spigell/job-portal/internal/logger"
	"github.com/spigell/job-portal/internal/portal"
	"github.com/spigell/job-portal/internal/secrets"
	"github.com/spigell/job-portal/internal/session"
)

// setup builds the logger and reads the config. Failures here are fatal.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the job-portal", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func newClient(config *Config, logger *zap.Logger) (*portal.Client, error) {
	token, err := secrets.LoadOptional(secrets.Source{
		Name: "backend token",
		File: strings.TrimSpace(config.TokenFile),
	})
	if err != nil {
		return nil, fmt.Errorf("loading backend token: %w", err)
	}

	client := portal.New(logger.Named("portal"), token)
	if config.BackendURL != "" {
		client.BackendURL = config.BackendURL
	}
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.RequestTimeout > 0 {
		client.HTTPClient.Timeout = config.RequestTimeout
	}
	if config.UploadTimeout > 0 {
		client.UploadClient.Timeout = config.UploadTimeout
	}

	return client, nil
}

// startSession creates a session, loads the catalog and applies the configured query.
func startSession(ctx context.Context, config *Config, logger *zap.Logger) *session.Session {
	client, err := newClient(config, logger)
	if err != nil {
		logger.Fatal("creating backend client", zap.Error(err),
			zap.String("hint", "set JOB_PORTAL_TOKEN_FILE environment variable or the 'token-file' key in the configuration file"),
		)
	}

	s := session.New(ctx, client, logger)
	s.Start()
	s.Wait()

	location := config.Location
	if location == "" {
		location = filtering.AllLocations
	}

	s.SetSearch(config.Search)
	s.SetLocation(location)

	logger.Info("job catalog is ready", zap.Int("count", s.Snapshot().Total), zap.String("backend", client.BackendURL))
	return s
}

// reportNotices logs every notice published after seq and returns the last seen sequence.
func reportNotices(logger *zap.Logger, s *session.Session, seq int64) int64 {
	for _, notice := range s.Notices().Since(seq) {
		fields := []zap.Field{zap.String("op", notice.Op)}
		if notice.JobID != "" {
			fields = append(fields, zap.String("job_id", notice.JobID))
		}

		switch notice.Kind {
		case session.NoticeError:
			logger.Error(notice.Message, fields...)
		case session.NoticeWarning:
			logger.Warn(notice.Message, fields...)
		default:
			logger.Info(notice.Message, fields...)
		}
		seq = notice.Seq
	}
	return seq
}

func renderJobs(w io.Writer, jobs []catalog.Job) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Company", "Location", "Match"})
	table.SetAutoWrapText(false)

	for _, job := range jobs {
		match := "-"
		if job.Match != nil {
			match = strconv.FormatFloat(job.Match.Score, 'f', -1, 64) + "%"
		}
		table.Append([]string{job.ID, job.Title, job.Company, job.Location, match})
	}

	table.Render()
}

func renderMatch(w io.Writer, job catalog.Job) {
	if job.Match == nil {
		fmt.Fprintf(w, "%s: no match result\n", job.Title)
		return
	}

	fmt.Fprintf(w, "%s (%s)\n", job.Title, job.Company)
	fmt.Fprintf(w, "  Match Score: %s%%\n", strconv.FormatFloat(job.Match.Score, 'f', -1, 64))
	fmt.Fprintf(w, "  Explanation: %s\n", job.Match.Explanation)
	fmt.Fprintf(w, "  Your Skills: %s\n", strings.Join(job.Match.ResumeSkills, ", "))
	fmt.Fprintf(w, "  Required Skills: %s\n", strings.Join(job.Match.JobSkills, ", "))
}
