package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/union"
	"go.uber.org/zap"
)

var (
	widgets  []string
	debounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Mount widgets for a page document and follow its changes",
	Long: `watch registers one recording widget per --widget name. Each mounted
widget keeps the data of its placeholder in its state slice. Store and page
signals are logged as the document changes. A file of "-" reads one
document from stdin and keeps it mounted until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// recorder keeps the latest placeholder data the page handed over.
func recorder(prev any, action union.Action) any {
	if action.Type == union.ActionWidgetMounted || action.Type == union.ActionWidgetUpdated {
		if d, ok := action.Payload.(union.Descriptor); ok {
			return d.Data
		}
	}
	return prev
}

func buildCatalog(names []string) (*union.Catalog, error) {
	catalog := union.NewCatalog()
	for _, name := range names {
		binder := union.WithRedux(union.Config{
			Name:     name,
			Reducers: union.Reducers{"data": union.Reducer(recorder)},
		})
		if err := catalog.Register(name, binder); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// watcherFor follows the named file, or serves stdin once for "-".
func watcherFor(path string, stdin io.Reader) (union.Watcher, error) {
	if path != "-" {
		return union.NewFileWatcher(path), nil
	}
	doc, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return union.NewStaticWatcher(doc), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	catalog, err := buildCatalog(widgets)
	if err != nil {
		return err
	}
	watcher, err := watcherFor(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logSignals(logger)
	defer capitan.Shutdown()

	store := union.NewStore()
	defer store.Close()

	page := union.NewPage(watcher, store, catalog).
		Codec(codec()).
		ErrorHistorySize(10).
		OnStop(func(state union.PageState) {
			logger.Info("stopped watching", zap.Stringer("state", state))
		})
	if debounce > 0 {
		page.Debounce(debounce)
	}

	if err := page.Start(ctx); err != nil {
		logger.Warn("initial document rejected", zap.Error(err))
	}

	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := page.Close(closeCtx); err != nil {
		return fmt.Errorf("unmount widgets: %w", err)
	}
	return nil
}
