package kvs

import "log/slog"

// Builder is the fluent construction surface over Open.
//
//	store, err := kvs.NewBuilder("1").
//		RequireDefaults(true).
//		Directory("/var/lib/myapp").
//		Build()
type Builder struct {
	instanceID  string
	needs       [2]Need // defaults, kvs
	dir         string
	dirSet      bool
	fs          Filesystem
	logger      *slog.Logger
	flushOnExit bool
}

const DefaultDir = "./data_folder/"

// NewBuilder starts a builder for the given instance. All other settings
// hold their defaults until changed: both loads optional, DefaultDir,
// host filesystem, slog default logger, flush-on-exit enabled.
func NewBuilder(instanceID string) *Builder {
	return &Builder{instanceID: instanceID, flushOnExit: true}
}

// RequireDefaults makes Build fail unless the defaults pair loads.
func (b *Builder) RequireDefaults(flag bool) *Builder {
	b.needs[0] = need(flag)
	return b
}

// RequireExistingStore makes Build fail unless the current pair loads.
func (b *Builder) RequireExistingStore(flag bool) *Builder {
	b.needs[1] = need(flag)
	return b
}

// Directory sets the storage directory. An empty string means the current
// directory; leaving it unset means DefaultDir.
func (b *Builder) Directory(dir string) *Builder {
	b.dir = dir
	b.dirSet = true
	return b
}

// FlushOnExit controls whether the built store flushes on Close.
func (b *Builder) FlushOnExit(flag bool) *Builder {
	b.flushOnExit = flag
	return b
}

// WithFilesystem substitutes the storage medium, e.g. a kvsbolt.FS.
func (b *Builder) WithFilesystem(fsys Filesystem) *Builder {
	b.fs = fsys
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build opens the store with the accumulated configuration.
func (b *Builder) Build() (*Store, error) {
	s, err := Open(b.instanceID, Options{
		NeedDefaults: b.needs[0],
		NeedKVS:      b.needs[1],
		Dir:          b.resolvedDir(),
		FS:           b.fs,
		Logger:       b.logger,
	})
	if err != nil {
		return nil, err
	}
	s.SetFlushOnExit(b.flushOnExit)
	return s, nil
}

func (b *Builder) resolvedDir() string {
	if !b.dirSet {
		return DefaultDir
	}
	if b.dir == "" {
		return "./"
	}
	return b.dir
}

func need(flag bool) Need {
	if flag {
		return Required
	}
	return Optional
}
