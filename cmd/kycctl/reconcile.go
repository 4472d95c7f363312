package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ucardlabs/ucard-admin/internal/db"
	"github.com/ucardlabs/ucard-admin/internal/infrastructure/persistence"
	"github.com/ucardlabs/ucard-admin/internal/usecase/kyc"
)

func reconcileCmd() *cobra.Command {
	var (
		staleAfter   time.Duration
		releaseStale bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Дописать решения аудита, подтверждённые ucard-api, но не сохранённые в базе",
		Long: `Дописывает решения аудита, которые ucard-api уже принял, но которые
не попали в базу из-за падения процесса.

Намерения, зависшие до ответа ucard-api, только выводятся: их результат
неизвестен. Флаг --release-stale удаляет их после ручной проверки.

Примеры:
  kycctl reconcile
  kycctl reconcile --stale-after 30m --release-stale`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("stale-after") {
				staleAfter = cfg.ReconcileStaleAfter
			}

			conn, err := db.NewDatabase(cmd.Context(), cfg.DBDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			kycRepo := persistence.NewKycRepositoryAdapter(conn)
			journal := persistence.NewAuditJournalAdapter(conn)
			propagator := kyc.NewStatePropagator(persistence.NewAuditStoreAdapter(conn))

			report, err := kyc.NewReconcileUseCase(kycRepo, journal, propagator).Execute(cmd.Context(), kyc.ReconcileOptions{
				StaleAfter:   staleAfter,
				ReleaseStale: releaseStale,
			})
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&staleAfter, "stale-after", 5*time.Minute, "минимальный возраст намерения (по умолчанию RECONCILE_STALE_AFTER)")
	cmd.Flags().BoolVar(&releaseStale, "release-stale", false, "удалить намерения, зависшие до ответа ucard-api")

	return cmd
}

func printReport(w io.Writer, report *kyc.ReconcileReport) {
	fmt.Fprintf(w, "дописано: %d\n", report.Resumed)
	fmt.Fprintf(w, "удалено (заявка уже решена): %d\n", report.Dropped)
	fmt.Fprintf(w, "из них с другим решением: %d\n", report.Conflicts)
	fmt.Fprintf(w, "ошибок: %d\n", report.Failed)
	fmt.Fprintf(w, "зависших: %d, удалено: %d\n", len(report.Stale), report.Released)
	for _, intent := range report.Stale {
		fmt.Fprintf(w, "  заявка %d: %s, создано %s\n",
			intent.SubmissionID, intent.Decision, intent.CreatedAt.UTC().Format(time.RFC3339))
	}
}
