package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/transfermatch-dev/transfermatch/internal/config"
	"github.com/transfermatch-dev/transfermatch/internal/decisions"
	"github.com/transfermatch-dev/transfermatch/internal/engine"
	"github.com/transfermatch-dev/transfermatch/internal/export"
	"github.com/transfermatch-dev/transfermatch/internal/idiom"
	"github.com/transfermatch-dev/transfermatch/internal/importer"
	"github.com/transfermatch-dev/transfermatch/internal/logging"
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

func newReconcileCommand() *cobra.Command {
	var dir string
	var record bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Import statements, reconcile transfers, and export unified CSVs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runReconcile(absDir, record)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().BoolVar(&record, "record", false, "append newly confirmed pairs to the decision log")

	return cmd
}

func runReconcile(dir string, record bool) error {
	cfg, err := config.Load(filepath.Join(dir, "transfermatch.yaml"))
	if err != nil {
		return err
	}

	txns, err := importStatements(dir, cfg)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Println("No statements found in import/.")
		return nil
	}

	prior, err := decisions.Read(dir)
	if err != nil {
		return err
	}
	seeds := pruneSeeds(decisions.Seeds(prior), txns)

	log := logging.New()
	eng := engine.New(cfg, idiom.DefaultRegistry(), log)
	set, err := eng.Reconcile(txns, seeds)
	if err != nil {
		return err
	}

	cat := export.NewCategorizer(cfg.Categories, set.Overrides)
	if err := export.WriteTransactionsFile(filepath.Join(dir, "exports", "unified.csv"), txns, cat); err != nil {
		return err
	}
	if err := export.WriteTransfersFile(filepath.Join(dir, "exports", "transfers.csv"), set.Confirmed); err != nil {
		return err
	}

	if record {
		var ds []decisions.Decision
		seeded := make(map[string]bool, len(seeds))
		for _, s := range seeds {
			seeded[s.OutgoingID] = true
		}
		for _, p := range set.Confirmed {
			if seeded[p.OutgoingID] {
				continue
			}
			ds = append(ds, decisions.Decision{
				Timestamp:  time.Now().UTC(),
				OutgoingID: p.OutgoingID,
				IncomingID: p.IncomingID,
				Confidence: p.Confidence,
				DecidedBy:  "auto",
			})
		}
		if len(ds) > 0 {
			if err := decisions.Append(dir, ds); err != nil {
				return err
			}
		}
	}

	fmt.Printf("Reconciled %d transactions: %d confirmed, %d potential, %d conflicts\n",
		len(txns), len(set.Confirmed), len(set.Potential), len(set.Conflicts))
	for _, g := range set.Conflicts {
		fmt.Printf("  conflict: %d candidates need manual review\n", len(g.Pairs))
	}
	return nil
}

// importStatements parses every CSV in import/, picking the parser from the
// configured account mapping or the file name.
func importStatements(dir string, cfg *config.Config) ([]model.Transaction, error) {
	files, err := importer.Scan(dir)
	if err != nil {
		return nil, err
	}

	registry := importer.DefaultRegistry()
	var txns []model.Transaction
	for _, fi := range files {
		account, format := accountFor(cfg, fi.Name)
		parser := registry.Get(format)
		if parser == nil {
			return nil, fmt.Errorf("no parser for format %q (file %s)", format, fi.Name)
		}

		f, err := os.Open(fi.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fi.Name, err)
		}
		parsed, err := parser.Parse(f, account)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", fi.Name, err)
		}
		txns = append(txns, parsed...)
	}
	return txns, nil
}

// accountFor resolves a statement file to its account name and parser
// format, preferring an explicit config mapping over file-name detection.
func accountFor(cfg *config.Config, fileName string) (account, format string) {
	for _, a := range cfg.Accounts {
		if a.FilePattern == "" {
			continue
		}
		if ok, _ := filepath.Match(a.FilePattern, fileName); ok {
			format = a.Format
			if format == "" {
				format = importer.Detect(fileName)
			}
			name := a.Name
			if name == "" {
				name = importer.SourceAccount(fileName)
			}
			return name, format
		}
	}
	return importer.SourceAccount(fileName), importer.Detect(fileName)
}

// pruneSeeds drops recorded decisions whose transactions are not part of
// the current batch; decisions persist across uploads, batches change.
func pruneSeeds(seeds []model.CandidatePair, txns []model.Transaction) []model.CandidatePair {
	byID := make(map[string]bool, len(txns))
	for _, t := range txns {
		byID[t.ID] = true
	}
	var kept []model.CandidatePair
	for _, s := range seeds {
		if byID[s.OutgoingID] && byID[s.IncomingID] {
			kept = append(kept, s)
		}
	}
	return kept
}
