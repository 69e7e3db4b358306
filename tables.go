package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cursork/cinlook/cin"
	"github.com/cursork/cinlook/logger"
	"github.com/cursork/cinlook/watch"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TablePaths names the composition and reference table files.
type TablePaths struct {
	Compose   string
	Reference string
}

func (p TablePaths) reference() string {
	if p.Reference == "" {
		return p.Compose
	}
	return p.Reference
}

// Files returns the distinct files behind p.
func (p TablePaths) Files() []string {
	if p.reference() == p.Compose {
		return []string{p.Compose}
	}
	return []string{p.Compose, p.reference()}
}

// LoadTables reads both tables in parallel and pairs them. When both paths
// name the same file it is read once and shared.
func LoadTables(ctx context.Context, paths TablePaths, opts ...cin.Option) (*cin.Coordinator, error) {
	if paths.Compose == "" {
		return nil, errors.WithHint(errors.New("no composition table"),
			"pass --compose FILE or set tables.compose in cinlook.toml")
	}
	opts = append(opts[:len(opts):len(opts)], cin.WithLogger(logger.Named("cin")))

	files := paths.Files()
	tables := make([]*cin.Table, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := cin.Load(f, opts...)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	compose, reference := tables[0], tables[0]
	if len(tables) > 1 {
		reference = tables[1]
	}
	return cin.NewCoordinator(compose, reference), nil
}

// reloadEvent carries the outcome of reloading the tables.
type reloadEvent struct {
	coord   *cin.Coordinator
	path    string // file whose change triggered the reload, if any
	err     error
	watched bool // delivered on the watcher channel
}

// watchTables reloads the tables whenever the watcher reports a settled
// change and delivers each outcome on the returned channel. The channel is
// closed when the watcher stops.
func watchTables(ctx context.Context, w *watch.Watcher, paths TablePaths, opts ...cin.Option) <-chan reloadEvent {
	ch := make(chan reloadEvent)
	go func() {
		defer close(ch)
		for ev := range w.Events() {
			logger.Logger.Debugw("table changed", "path", ev.Path, "removed", ev.Removed)
			out := reloadEvent{path: ev.Path, watched: true}
			if ev.Removed {
				out.err = errors.Newf("%s was removed", ev.Path)
			} else {
				out.coord, out.err = LoadTables(ctx, paths, opts...)
			}
			if out.err != nil {
				logger.Logger.Warnw("reload failed", "path", ev.Path, zap.Error(out.err))
			}
			select {
			case ch <- out:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
