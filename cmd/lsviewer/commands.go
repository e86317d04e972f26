package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cascadia-hazards/landslide-viewer/internal/details"
	"github.com/cascadia-hazards/landslide-viewer/internal/download"
	"github.com/cascadia-hazards/landslide-viewer/internal/filter"
	"github.com/cascadia-hazards/landslide-viewer/internal/invalidation"
	"github.com/cascadia-hazards/landslide-viewer/internal/jobs"
)

func (a *app) countPoll() jobs.PollOptions {
	return jobs.PollOptions{
		Interval:    a.cfg.CountPoll.Interval,
		MaxDuration: a.cfg.CountPoll.MaxDuration,
	}
}

func (a *app) downloadPoll() jobs.PollOptions {
	return jobs.PollOptions{
		Interval:    a.cfg.DownloadPoll.Interval,
		MaxDuration: a.cfg.DownloadPoll.MaxDuration,
	}
}

func (a *app) tileURLCmd() *cobra.Command {
	var points bool
	cmd := &cobra.Command{
		Use:   "tile-url",
		Short: "Print the vector-tile URL template for the active filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.buildState()
			if err != nil {
				return err
			}
			snap := st.Snapshot()

			query, err := filter.TileQuery(st.Catalog(), &snap, time.Now())
			if err != nil {
				return err
			}
			source := a.cfg.TileSourcePolys
			if points {
				source = a.cfg.TileSourcePts
			}
			fmt.Fprintln(cmd.OutOrStdout(), filter.TileURL(a.cfg.TileBaseURL, source, query))
			return nil
		},
	}
	cmd.Flags().BoolVar(&points, "points", false, "use the point source instead of polygons")
	return cmd
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count features matching the active filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.buildState()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			snap := st.Snapshot()
			payload, err := filter.JobPayload(st.Catalog(), &snap)
			if err != nil {
				return err
			}

			jc := jobs.NewClient(nil, a.log)
			jobID, err := jc.Submit(ctx, a.cfg.APIBaseURL+"/count", map[string]any{"filters": payload})
			if err != nil {
				return err
			}
			job, err := jc.Poll(ctx, a.cfg.APIBaseURL+"/count", jobID, a.countPoll())
			if err != nil {
				return err
			}
			res, err := job.CountResult()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Count)
			return nil
		},
	}
}

func (a *app) downloadCmd() *cobra.Command {
	var (
		compress bool
		yes      bool
		direct   bool
		outDir   string
	)
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Count, confirm and download the filtered features",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.buildState()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dir := outDir
			if dir == "" {
				dir = a.cfg.DownloadDir
			}

			cfg := download.Config{
				APIBaseURL:           a.cfg.APIBaseURL,
				CDNBaseURL:           a.cfg.CDNBaseURL,
				CountPoll:            a.countPoll(),
				DownloadPoll:         a.downloadPoll(),
				LargeResultThreshold: int64(a.cfg.LargeResultThreshold),
			}
			pr := &consolePresenter{out: cmd.OutOrStdout()}
			orch := download.NewOrchestrator(cfg, jobs.NewClient(nil, a.log), st,
				pr, download.NewFileSaver(nil, dir), a.log)

			if direct {
				saved, err := orch.Direct(ctx, compress)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Saved:", saved)
				return nil
			}

			if err := orch.Begin(ctx); err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout()) {
				a.log.Info("download declined")
				return nil
			}
			if err := orch.Confirm(ctx, compress); err != nil {
				if errors.Is(err, jobs.ErrCancelled) {
					return nil
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compress, "compress", false, "request the zipped export")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&direct, "direct", false, "skip the count step entirely")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to save the export into")
	return cmd
}

func (a *app) detailsCmd() *cobra.Command {
	var (
		source   string
		viewerID string
		geom     bool
	)
	cmd := &cobra.Command{
		Use:   "details",
		Short: "Fetch the attribute record for one feature",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, cleanup, err := a.detailsStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			f := details.NewFetcher(nil, a.cfg.DetailsBaseURL, store, a.log)
			rec, err := f.Fetch(ctx, details.Query{
				Source:      source,
				ViewerID:    viewerID,
				IncludeGeom: geom,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "dataset source identifier")
	cmd.Flags().StringVar(&viewerID, "viewer-id", "", "feature viewer id")
	cmd.Flags().BoolVar(&geom, "geom", false, "include the feature geometry")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("viewer-id")
	return cmd
}

// detailsStore picks redis when configured, memory otherwise, and starts
// the invalidation runner against whichever store is in use.
func (a *app) detailsStore(ctx context.Context) (details.Store, func(), error) {
	var store details.Store
	cleanup := func() {}

	if a.cfg.RedisAddr != "" {
		rs, err := details.NewRedisStore(ctx, a.cfg.RedisAddr, a.cfg.DetailsCacheTTL)
		if err != nil {
			return nil, nil, err
		}
		store = rs
		cleanup = func() { _ = rs.Close() }
	} else {
		store = details.NewMemoryStore(a.cfg.DetailsCacheSize, a.cfg.DetailsCacheTTL)
	}

	if a.cfg.Invalidation.Enabled {
		runner := invalidation.New(a.cfg.Invalidation, store, a.log)
		if err := runner.Start(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		prev := cleanup
		cleanup = func() {
			runner.Stop()
			prev()
		}
	}
	return store, cleanup, nil
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Proceed with download? [y/N] ")
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(sc.Text())) {
	case "y", "yes":
		return true
	}
	return false
}
