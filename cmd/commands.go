package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gratten/lapgpx/internal/gpx"
	"github.com/gratten/lapgpx/internal/handlers"
	"github.com/gratten/lapgpx/internal/utils"
	"github.com/gratten/lapgpx/internal/xmlstream"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the activity API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}

			h := handlers.New(a.store, a.cfg.GPXOptions(), a.cfg.Indent, a.log)
			srv := &http.Server{Addr: addr, Handler: h.Routes(), ReadHeaderTimeout: 10 * time.Second}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdown)
			}()

			a.log.Info("starting server", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var output, restLaps string
	var private bool
	cmd := &cobra.Command{
		Use:   "export <activity-id>",
		Short: "Write an activity as a GPX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid activity id %q", args[0])
			}
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			opts := a.cfg.GPXOptions()
			opts.Logger = a.log
			if cmd.Flags().Changed("private") {
				opts.PrivateExtensions = private
			}
			if restLaps != "" {
				if opts.RestLaps, err = gpx.ParseRestLapPolicy(restLaps); err != nil {
					return err
				}
			}

			var xmlOpts []xmlstream.Option
			if a.cfg.Indent {
				xmlOpts = append(xmlOpts, xmlstream.WithIndent())
			}

			if output == "-" {
				_, err := gpx.NewWriter(a.store, xmlstream.New(cmd.OutOrStdout(), xmlOpts...), opts).Export(cmd.Context(), id)
				return err
			}

			// Written to a temp file first; a failed export leaves nothing behind.
			dir := "."
			if output != "" {
				dir = filepath.Dir(output)
			}
			tmp, err := os.CreateTemp(dir, ".lapgpx-*.gpx")
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer os.Remove(tmp.Name())

			w := gpx.NewWriter(a.store, xmlstream.New(tmp, xmlOpts...), opts)
			startTime, exportErr := w.Export(cmd.Context(), id)
			if err := tmp.Close(); err != nil && exportErr == nil {
				exportErr = fmt.Errorf("close output: %w", err)
			}
			if exportErr != nil {
				return exportErr
			}

			if output == "" {
				output = utils.ExportFilename(opts.Prefix(), startTime)
			}
			if err := os.Rename(tmp.Name(), output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported activity %d to %s\n", id, output)
			if notes, ok := w.Notes(); ok {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "notes: %s\n", notes)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; \"-\" for stdout (default derived from start time)")
	cmd.Flags().BoolVar(&private, "private", false, "include private extensions (pressure, accuracy, bearing, speed, satellites)")
	cmd.Flags().StringVar(&restLaps, "rest-laps", "", "rest lap policy: off|empty|bridge (overrides config)")
	return cmd
}

func newActivitiesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "activities",
		Short: "List stored activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			activities, err := a.store.ListActivities(cmd.Context())
			if err != nil {
				return err
			}
			if len(activities) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no activities")
				return nil
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			for _, act := range activities {
				writeActivityLine(out, act.ID, gpx.FormatTime(act.StartTime*1000), deref(act.Name))
			}
			return out.Flush()
		},
	}
}

func writeActivityLine(w io.Writer, id int64, start, name string) {
	_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", id, start, name)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
