package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/khrees2412/applytrack/internal/app"
	"github.com/khrees2412/applytrack/internal/poller"
	"github.com/khrees2412/applytrack/internal/status"
	"github.com/khrees2412/applytrack/pkg/models"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch applications with auto-refresh",
	Long: `Show the reconciled application list and refresh it on an interval.
When a refresh fails the last known list stays on screen with a warning.

Commands:
  r               refresh now
  a               toggle auto-refresh
  v               switch between list and statistics
  u <n> <status>  update the status of application n
  q               quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		session, err := sessionFromFlags(cmd, application)
		if err != nil {
			return err
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = application.Config.PollInterval
		}
		showStats, _ := cmd.Flags().GetBool("stats")

		w := newWatcher(cmd.OutOrStdout(), session, showStats)
		p := poller.New(func(ctx context.Context) (models.ReconciledList, error) {
			return application.Refresh(ctx, session)
		}, interval, application.Logger.Named("poller"))
		p.OnUpdate(w.update)

		ctx := cmd.Context()
		p.Start(ctx)
		defer p.Stop()

		lines := make(chan string)
		go readLines(os.Stdin, lines)

		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					// stdin closed; keep refreshing until interrupted
					lines = nil
					continue
				}
				if quit := w.handle(ctx, line, p, application); quit {
					return nil
				}
			}
		}
	},
}

// watcher owns the terminal while watch runs; poller callbacks and user
// commands both render through it.
type watcher struct {
	out     io.Writer
	session models.Session

	mu        sync.Mutex
	showStats bool
	last      poller.Result
	seen      bool
}

func newWatcher(out io.Writer, session models.Session, showStats bool) *watcher {
	return &watcher{out: out, session: session, showStats: showStats}
}

// update records a resolved fetch and redraws. Results from earlier ticks
// that resolve late still win, matching the poller's ordering.
func (w *watcher) update(r poller.Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = r
	w.seen = true
	w.renderLocked(time.Now())
}

func (w *watcher) redraw() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.renderLocked(time.Now())
}

func (w *watcher) renderLocked(now time.Time) {
	if !w.seen {
		fmt.Fprintln(w.out, "Loading applications...")
		return
	}
	list := w.last.List
	if err := fetchOutcome(w.out, list, w.last.Err); err != nil {
		fmt.Fprintln(w.out, errorStyle.Render("✗ "+err.Error()))
		return
	}

	if w.showStats {
		if len(list.Applications) == 0 {
			fmt.Fprintln(w.out, "No applications yet.")
		} else {
			renderStats(w.out, list, now)
		}
	} else {
		renderNumbered(w.out, w.session, list.Applications)
	}
	fmt.Fprintf(w.out, "\n%s %s  [r]efresh [a]uto [v]iew [u]pdate [q]uit\n> ",
		labelStyle.Render("Updated:"), list.FetchedAt.Local().Format("15:04:05"))
}

// application returns the n-th (1-based) application of the last list
func (w *watcher) application(n int) (models.Application, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	apps := w.last.List.Applications
	if n < 1 || n > len(apps) {
		return models.Application{}, false
	}
	return apps[n-1], true
}

func (w *watcher) toggleView() {
	w.mu.Lock()
	w.showStats = !w.showStats
	w.mu.Unlock()
	w.redraw()
}

// setList replaces the displayed list after a local change
func (w *watcher) setList(list models.ReconciledList) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = poller.Result{Tick: w.last.Tick, List: list}
	w.seen = true
	w.renderLocked(time.Now())
}

func (w *watcher) handle(ctx context.Context, line string, p *poller.Poller, application *app.App) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		w.redraw()
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "q", "quit":
		return true
	case "r":
		go p.Refresh(ctx)
	case "a":
		on := !p.Running()
		p.SetAutoRefresh(on)
		if on {
			fmt.Fprintln(w.out, "Auto-refresh on")
		} else {
			fmt.Fprintln(w.out, "Auto-refresh paused")
		}
	case "v":
		w.toggleView()
	case "u":
		if len(fields) != 3 {
			fmt.Fprintln(w.out, "Usage: u <n> <status>")
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintln(w.out, "Invalid selection")
			return false
		}
		a, ok := w.application(n)
		if !ok {
			fmt.Fprintln(w.out, "Invalid selection")
			return false
		}
		newStatus, err := status.ParseDisplay(fields[2])
		if err != nil {
			fmt.Fprintln(w.out, errorStyle.Render("✗ "+err.Error()))
			return false
		}
		if err := application.UpdateStatus(ctx, w.session, a.Key(), newStatus); err != nil {
			fmt.Fprintln(w.out, errorStyle.Render("✗ "+err.Error()))
			return false
		}
		fmt.Fprintf(w.out, "✓ Application %s updated to: %s\n", a.Key(), status.Label(newStatus))
		w.setList(application.Reconciler.Current())
	default:
		fmt.Fprintln(w.out, "Unknown command")
	}
	return false
}

func renderNumbered(w io.Writer, session models.Session, apps []models.Application) {
	if len(apps) == 0 {
		fmt.Fprintln(w, "No applications yet.")
		return
	}
	title := "Your Applications"
	if session.Role == models.RoleRecruiter {
		title = "Applicants"
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	for i, a := range apps {
		name := fmt.Sprintf("%s at %s", a.JobTitle, a.CompanyName)
		if session.Role == models.RoleRecruiter {
			name = fmt.Sprintf("%s for %s", a.ApplicantName, a.JobTitle)
		}
		fmt.Fprintf(w, "%3d. %s  %s  %s\n", i+1, name,
			statusStyle(a.Status).Render(status.Label(a.Status)), formatDate(a))
	}
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("interval", 0, "Refresh interval (defaults to poll_interval from config)")
	watchCmd.Flags().Bool("stats", false, "Start on the statistics view")
}
