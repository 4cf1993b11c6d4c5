package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/billflow/backend/internal/store"
	"github.com/wonny/billflow/backend/pkg/database"
	"github.com/wonny/billflow/backend/pkg/logger"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "계약 파일을 Postgres로 적재",
	Long: `JSON/YAML 계약 파일을 billing.contracts 테이블에 upsert 합니다.
스키마가 없으면 생성합니다. DATABASE_URL이 필요합니다.

Example:
  go run ./cmd/billflow import contract_data.json
  go run ./cmd/billflow import contracts.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importDryRun bool

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "파일 검증만 하고 DB에 쓰지 않음")
}

func runImport(cmd *cobra.Command, args []string) error {
	start := time.Now()
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg).Component("import")

	// 1. Decode + validate (index 중복이면 실패)
	p, err := store.NewFileStore(path).Load(context.Background())
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(p) == 0 {
		PrintWarning(fmt.Sprintf("%s has no contracts", path))
		return nil
	}

	if importDryRun {
		PrintSuccess(fmt.Sprintf("%s: %d contracts valid (dry run)", path, len(p)))
		return nil
	}

	// 2. Connect + schema
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	pg := store.NewPostgresStore(db.Pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}

	// 3. Upsert
	n, err := pg.SaveBatch(ctx, p)
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"file":      path,
		"contracts": n,
		"duration":  time.Since(start),
	}).Info("Contracts imported")

	PrintSuccess(fmt.Sprintf("Imported %d contracts into billing.contracts in %.2fs", n, time.Since(start).Seconds()))
	return nil
}
