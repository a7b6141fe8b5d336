package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom-cli/internal/adapters/driven/config/file"
	"github.com/fathom-search/fathom-cli/internal/core/ports/driving"
)

var (
	loadFull   bool
	loadSpaces []string
	loadResume bool
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load application metadata into the local catalog",
	Long: `Fetches the structure of your tenant's applications and indexes their
dimensions and measures locally. Unchanged applications are skipped;
use --full to discard the cache and reload everything.

With --space, only applications in the named spaces are fetched.
Applications outside the selection are parked, not lost: widen the
selection and run 'fathom load --resume' to pick them up.`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadFull, "full", false, "discard the cache and reload everything")
	loadCmd.Flags().StringSliceVar(&loadSpaces, "space", nil,
		"limit loading to these space IDs ('personal' for the personal space)")
	loadCmd.Flags().BoolVar(&loadResume, "resume", false, "load applications parked by a previous space filter")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	loader, err := newLoader()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("space") {
		spaces := normalizeSpaceIDs(loadSpaces)
		loader.SetSpaceFilter(spaces)
		if err := configStore.Set(file.KeySpaceFilter, spaces); err != nil {
			return fmt.Errorf("persisting space filter: %w", err)
		}
	}

	ctx := cmd.Context()

	run := func(ctx context.Context) error {
		if loadResume {
			return loader.Resume(ctx)
		}
		return loader.Refresh(ctx, loadFull)
	}

	if err := loadWithProgress(ctx, cmd, loader, run); err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	printLoadSummary(cmd, loader.Status())
	return nil
}

// loadWithProgress runs the load while polling status every 500ms and
// rewriting a single progress line.
func loadWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	loader driving.CatalogLoader,
	run func(context.Context) error,
) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			cmd.Print("\r\033[K")
			return err
		case <-ticker.C:
			s := loader.Status()
			if !s.Running {
				continue
			}
			cmd.Printf("\rLoading... %d/%d apps (%d cached, %d failed)",
				s.Loaded+s.Cached, s.Total, s.Cached, s.Failed)
		}
	}
}

func printLoadSummary(cmd *cobra.Command, s driving.LoadStatus) {
	summary := fmt.Sprintf("Done: %d loaded, %d cached, %d failed", s.Loaded, s.Cached, s.Failed)
	cmd.Println(bannerStyle.Render(summary))

	if s.Pending > 0 {
		cmd.Println(warnStyle.Render(fmt.Sprintf(
			"%d application(s) parked by the space filter. Widen --space and run 'fathom load --resume'.",
			s.Pending)))
	}
}
