package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/punchaudit/punchaudit-backend/internal/audit/calendar"
	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
	"github.com/punchaudit/punchaudit-backend/internal/audit/report"
	"github.com/punchaudit/punchaudit-backend/internal/audit/service"
)

var (
	analyzeStart   string
	analyzeEnd     string
	analyzeExclude []string
	analyzeOutDir  string
	analyzeJSON    bool
	analyzeNoXLSX  bool
)

// analyzeCmd runs one analysis against a local file
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a punch export and write the Excel report",
	Long: `Analyzes a local punch export over an inclusive date window.

The Excel report is written to --out as payroll_report_<id>.xlsx. The
summary (or, with --json, the full result) is printed to stdout.

Example:
  punchaudit analyze punches.csv --start 2024-01-01 --end 2024-01-31 --exclude 2024-01-15`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "First day of the window, YYYY-MM-DD (required)")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "Last day of the window, YYYY-MM-DD (required)")
	analyzeCmd.Flags().StringSliceVar(&analyzeExclude, "exclude", nil, "Dates to exclude, repeatable or comma separated")
	analyzeCmd.Flags().StringVarP(&analyzeOutDir, "out", "o", ".", "Directory for the Excel report")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the full result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoXLSX, "no-report", false, "Skip writing the Excel report")
	_ = analyzeCmd.MarkFlagRequired("start")
	_ = analyzeCmd.MarkFlagRequired("end")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cal, err := calendar.LoadFile(cfg.Policy.HolidayCalendar)
	if err != nil {
		return err
	}

	policy := service.PolicyFromConfig(cfg.Policy)

	var (
		renderer service.Renderer
		reports  report.Store
		store    *report.FileStore
	)
	if !analyzeNoXLSX {
		store, err = report.NewFileStore(analyzeOutDir, 0)
		if err != nil {
			return err
		}
		renderer = report.NewRenderer(policy)
		reports = store
	}

	svc := service.NewAnalysisService(policy, cal, renderer, reports, nil, nil, log)
	resp, err := svc.Analyze(cmd.Context(), service.AnalyzeRequest{
		Filename:        filepath.Base(path),
		File:            f,
		StartDate:       analyzeStart,
		EndDate:         analyzeEnd,
		ExcludeHolidays: strings.Join(analyzeExclude, ","),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp.AnalysisResult); err != nil {
			return err
		}
	} else {
		printSummary(cmd, resp.AnalysisResult)
	}

	if store != nil && resp.DownloadURL != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", store.Path(resp.RequestID))
	}
	return nil
}

func printSummary(cmd *cobra.Command, res *domain.AnalysisResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run:        %s\n", res.RequestID)
	fmt.Fprintf(out, "Window:     %s to %s (%d excluded)\n", res.Window.StartDate, res.Window.EndDate, len(res.Window.ExcludedDates))
	fmt.Fprintf(out, "Rows:       %d received, %d shifts in window\n", res.Summary.RowsReceived, res.Summary.RowsAfterFilter)
	fmt.Fprintf(out, "Employees:  %d\n", res.Summary.Employees)
	fmt.Fprintln(out, "Flags:")
	fmt.Fprintf(out, "  %-22s %d\n", domain.RuleExcessDailyHours, res.Summary.Flags.ExcessDailyHours)
	fmt.Fprintf(out, "  %-22s %d\n", domain.RuleLowRestHours, res.Summary.Flags.LowRestHours)
	fmt.Fprintf(out, "  %-22s %d\n", domain.RuleWeeklyExcessHours, res.Summary.Flags.WeeklyExcessHours)
	fmt.Fprintf(out, "  %-22s %d\n", domain.RuleExcessWorkingDays, res.Summary.Flags.ExcessWorkingDays)
	if len(res.Warnings) > 0 {
		fmt.Fprintf(out, "Warnings:   %d\n", len(res.Warnings))
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
}
