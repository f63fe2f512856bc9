package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/transfermatch-dev/transfermatch/internal/api"
	"github.com/transfermatch-dev/transfermatch/internal/config"
	"github.com/transfermatch-dev/transfermatch/internal/engine"
	"github.com/transfermatch-dev/transfermatch/internal/idiom"
	"github.com/transfermatch-dev/transfermatch/internal/logging"
)

func newServeCommand() *cobra.Command {
	var dir string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP reconciliation and review API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := config.Load(filepath.Join(absDir, "transfermatch.yaml"))
			if err != nil {
				return err
			}

			log := logging.New()
			eng := engine.New(cfg, idiom.DefaultRegistry(), log)
			srv := api.NewServer(eng, log)

			log.Info().Str("addr", addr).Msg("starting review API")
			return srv.Listen(addr)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
