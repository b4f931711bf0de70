package main

import (
	"fmt"
	"io"

	"github.com/atinyakov/cyberchat/internal/client/api"
	"github.com/atinyakov/cyberchat/internal/client/app"
	"github.com/atinyakov/cyberchat/internal/client/storage"
	"github.com/atinyakov/cyberchat/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session is a loaded App plus the store it must release.
type session struct {
	app   *app.App
	store storage.Store
	log   *zap.Logger
}

func (s *session) Close() error {
	_ = s.log.Sync()
	return s.store.Close()
}

// printNotices writes every notice as one line.
func printNotices(w io.Writer) app.Notifier {
	return app.NotifierFunc(func(n app.Notice) {
		prefix := "*"
		if n.Variant == app.VariantDestructive {
			prefix = "!"
		}
		if n.Description == "" {
			fmt.Fprintf(w, "%s %s\n", prefix, n.Title)
			return
		}
		fmt.Fprintf(w, "%s %s: %s\n", prefix, n.Title, n.Description)
	})
}

// openSession opens the store, restores the state and wires the backend.
func openSession(cmd *cobra.Command, opts *options) (*session, error) {
	log := logger.New()
	if opts.verbose {
		if err := log.Init("debug"); err != nil {
			return nil, err
		}
	}

	store, err := storage.Open(storage.Kind(opts.storeKind), opts.storePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	hc, err := api.NewHTTPClient(opts.caFile)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	backend := api.New(opts.baseURL,
		api.WithHTTPClient(hc),
		api.WithTimeout(opts.timeout),
		api.WithLogger(log.Log),
	)

	a := app.New(store, backend,
		app.WithNotifier(printNotices(cmd.ErrOrStderr())),
		app.WithLogger(log.Log),
	)
	if err := a.Load(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return &session{app: a, store: store, log: log.Log}, nil
}

// withSession runs fn against a freshly opened session.
func withSession(opts *options, fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, opts)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, args, s)
	}
}
