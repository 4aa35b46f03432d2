package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/door43/catalog-job-handler/config"
	"github.com/door43/catalog-job-handler/internal/adapters/redisqueue"
	"github.com/door43/catalog-job-handler/internal/bootstrap"
	"github.com/door43/catalog-job-handler/internal/domain/model"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

// app holds the lazily opened collaborators shared by the subcommands.
type app struct {
	cfg    config.AppConfig
	client redis.UniversalClient
	queue  *redisqueue.Queue
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "catalog-admin",
		Short:         "catalog-admin inspects and manages the catalog webhook job queue.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	root.AddCommand(
		newEnqueueCmd(a),
		newPendingCmd(a),
		newFailedCmd(a),
		newRequeueCmd(a),
		newResolveCmd(),
	)
	return root
}

func (a *app) openQueue(ctx context.Context) (*redisqueue.Queue, error) {
	if a.queue != nil {
		return a.queue, nil
	}
	client, err := bootstrap.ConnectRedis(ctx, bootstrap.RedisOptions{Config: a.cfg.Redis})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	q, err := bootstrap.NewQueue(&a.cfg, client)
	if err != nil {
		return nil, errors.Join(err, client.Close())
	}
	a.client = client
	a.queue = q
	return q, nil
}

func (a *app) close() error {
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	a.queue = nil
	return err
}

// readPayload decodes a webhook payload from a file, or stdin when path is "-".
func readPayload(path string, stdin io.Reader) (model.Payload, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return model.DecodePayload(raw)
}
