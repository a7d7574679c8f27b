package state

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"imgmeta/internal/config"
	serr "imgmeta/internal/errors"
	"imgmeta/internal/files"
	"imgmeta/internal/log"
	"imgmeta/internal/metadata"
	"imgmeta/internal/watch"
	"imgmeta/pkg/types"
)

// ImageLister lists the images of a folder.
type ImageLister interface {
	List(folder string) ([]types.ImageFile, error)
}

// MetadataReader decodes a metadata snapshot.
type MetadataReader interface {
	Read(ctx context.Context, path string) (*types.MetadataSnapshot, error)
}

// MetadataRewriter writes a modified copy of src and returns its path.
type MetadataRewriter interface {
	Rewrite(ctx context.Context, src string, update types.XMPUpdate) (string, error)
}

// Options wires a Container.
type Options struct {
	Lister   ImageLister
	Reader   MetadataReader
	Rewriter MetadataRewriter

	// Update is the default XMP update offered by the views and written on
	// selection when RewriteOnSelect is set.
	Update          types.XMPUpdate
	RewriteOnSelect bool

	// Watch re-lists the current folder on filesystem changes.
	Watch    bool
	Debounce time.Duration
}

// OptionsFromConfig builds Options backed by the real lister, reader and
// rewriter.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	lister, err := files.NewLister(cfg.Listing.Extensions)
	if err != nil {
		return Options{}, err
	}
	update, err := cfg.XMPUpdate()
	if err != nil {
		return Options{}, err
	}
	rewriter, err := metadata.NewBackend(cfg.Rewrite.Backend, cfg.Rewrite.Suffix, cfg.ExistingPolicy())
	if err != nil {
		return Options{}, err
	}
	return Options{
		Lister:          lister,
		Reader:          metadata.NewReader(),
		Rewriter:        rewriter,
		Update:          update,
		RewriteOnSelect: cfg.Rewrite.OnSelect,
		Watch:           cfg.Folder.Watch,
		Debounce:        cfg.Debounce(),
	}, nil
}

// Container is the single owner of the browsing state. Views read the
// observables and feed user intents back through its methods.
type Container struct {
	Folder   *Observable[string]
	Files    *Observable[[]types.ImageFile]
	Selected *Observable[*types.ImageFile]
	Metadata *Observable[*types.MetadataSnapshot]
	Notice   *Observable[types.Notice]
	// Busy is the number of running background tasks.
	Busy *Observable[int]

	opts   Options
	runner *Runner

	// listMu serializes folder listings so a watcher reload cannot
	// overwrite the result of a newer SetFolder.
	listMu sync.Mutex

	// selMu orders metadata publication against selection changes.
	selMu     sync.Mutex
	selection atomic.Uint64

	watcher     *watch.Watcher
	watcherDone chan struct{}
	closeOnce   sync.Once
}

// New creates a container. Lister, Reader and Rewriter must be set.
func New(opts Options) (*Container, error) {
	if opts.Lister == nil || opts.Reader == nil || opts.Rewriter == nil {
		return nil, fmt.Errorf("state: lister, reader and rewriter are required")
	}
	c := &Container{
		Folder:   NewObservable(""),
		Files:    NewObservable([]types.ImageFile{}),
		Selected: NewObservable[*types.ImageFile](nil),
		Metadata: NewObservable[*types.MetadataSnapshot](nil),
		Notice:   NewObservable(types.Notice{}),
		Busy:     NewObservable(0),
		opts:     opts,
	}
	c.runner = NewRunner(context.Background(), c.Busy.Set)

	if opts.Watch {
		c.startWatcher()
	}
	return c, nil
}

func (c *Container) startWatcher() {
	var wopts []watch.Option
	if m, ok := c.opts.Lister.(interface{ Matches(string) bool }); ok {
		wopts = append(wopts, watch.WithFilter(m.Matches))
	}
	w, err := watch.New(c.opts.Debounce, wopts...)
	if err != nil {
		log.LogWithFields(log.F("error", err)).Warn("Folder watching disabled")
		return
	}
	if err := w.Start(); err != nil {
		log.LogWithFields(log.F("error", err)).Warn("Folder watching disabled")
		w.Stop()
		return
	}
	c.watcher = w
	c.watcherDone = make(chan struct{})
	go func() {
		defer close(c.watcherDone)
		for change := range w.Changes() {
			if filepath.Clean(change.Folder) != filepath.Clean(c.Folder.Value()) {
				continue
			}
			log.LogWithFields(log.F("folder", change.Folder), log.F("paths", len(change.Paths))).Debug("Folder changed, reloading")
			c.refresh()
		}
	}()
}

// DefaultUpdate returns the configured XMP update.
func (c *Container) DefaultUpdate() types.XMPUpdate {
	return c.opts.Update
}

// SetFolder lists path synchronously and replaces the file list. The
// selection and metadata are left alone.
func (c *Container) SetFolder(path string) {
	path = strings.TrimSpace(path)

	c.listMu.Lock()
	defer c.listMu.Unlock()

	c.Folder.Set(path)
	c.list(path, true)

	if c.watcher != nil {
		if err := c.watcher.Watch(path); err != nil {
			log.LogWithFields(log.F("folder", path), log.F("error", err)).Debug("Not watching folder")
		}
	}
}

// Reload lists the current folder again.
func (c *Container) Reload() {
	c.listMu.Lock()
	defer c.listMu.Unlock()
	c.list(c.Folder.Value(), true)
}

// refresh re-lists after a change the user did not ask to see, keeping the
// current notice unless the folder became unreadable.
func (c *Container) refresh() {
	c.listMu.Lock()
	defer c.listMu.Unlock()
	c.list(c.Folder.Value(), false)
}

func (c *Container) list(path string, announce bool) {
	images, err := c.opts.Lister.List(path)
	if images == nil {
		images = []types.ImageFile{}
	}
	c.Files.Set(images)
	if err != nil {
		msg := "Folder not readable"
		if serr.IsFileNotFound(err) {
			msg = "Folder not found"
		}
		c.publish(types.Notice{Level: types.NoticeWarning, Message: msg, Path: path, Err: err})
		return
	}
	if announce {
		c.publish(types.Notice{Level: types.NoticeInfo, Message: fmt.Sprintf("%d images", len(images)), Path: path})
	}
}

// SelectFile selects entry and decodes its metadata in the background.
// A result that arrives after another file was selected is dropped.
func (c *Container) SelectFile(entry types.ImageFile) {
	selected := entry
	c.Selected.Set(&selected)

	c.selMu.Lock()
	gen := c.selection.Add(1)
	c.Metadata.Set(nil)
	c.selMu.Unlock()

	if c.opts.RewriteOnSelect && !c.opts.Update.IsEmpty() {
		c.RewriteXMP(entry, c.opts.Update)
	}

	c.runner.Go("read:"+entry.Path, func(ctx context.Context) {
		snap, err := c.opts.Reader.Read(ctx, entry.Path)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.publish(types.Notice{Level: types.NoticeWarning, Message: "No metadata available", Path: entry.Path, Err: err})
			snap = types.EmptySnapshot(entry.Path)
		}
		if snap == nil {
			snap = types.EmptySnapshot(entry.Path)
		}

		c.selMu.Lock()
		defer c.selMu.Unlock()
		if c.selection.Load() != gen {
			log.LogWithFields(log.F("path", entry.Path)).Debug("Dropped stale metadata")
			return
		}
		c.Metadata.Set(snap)
	})
}

// RewriteXMP writes the modified copy of entry in the background and
// returns the task id. The outcome is published as a Notice.
func (c *Container) RewriteXMP(entry types.ImageFile, update types.XMPUpdate) string {
	return c.runner.Go("rewrite:"+entry.Path, func(ctx context.Context) {
		dest, err := c.opts.Rewriter.Rewrite(ctx, entry.Path, update)
		if err != nil && ctx.Err() != nil {
			return
		}
		if err != nil {
			c.publish(types.Notice{Level: types.NoticeError, Message: "Rewrite failed", Path: entry.Path, Err: err})
			return
		}
		c.publish(types.Notice{Level: types.NoticeInfo, Message: "Wrote modified copy", Path: dest})

		if filepath.Dir(dest) == filepath.Clean(c.Folder.Value()) {
			c.refresh()
		}
	})
}

func (c *Container) publish(n types.Notice) {
	entry := log.LogWithFields(log.F("path", n.Path))
	if n.Err != nil {
		entry = log.LogWithError(n.Err).With(log.F("path", n.Path))
	}
	switch n.Level {
	case types.NoticeError:
		entry.Error(n.Message)
	case types.NoticeWarning:
		entry.Warn(n.Message)
	default:
		entry.Debug(n.Message)
	}
	c.Notice.Set(n)
}

// Wait blocks until all background tasks have finished.
func (c *Container) Wait() {
	c.runner.Wait()
}

// Close stops the watcher and cancels running tasks.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		if c.watcher != nil {
			c.watcher.Stop()
			<-c.watcherDone
		}
		c.runner.Close()
		if closer, ok := c.opts.Rewriter.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.LogError(err, "Failed to stop rewriter")
			}
		}
	})
}
