package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wastenot/cmd/wastenot/dash"
	"wastenot/cmd/wastenot/ui"
	"wastenot/internal/config"
	"wastenot/internal/logging"
	"wastenot/internal/reports"
	"wastenot/internal/store"
)

var (
	// Global flags
	configPath string
	dbOverride string
	verbose    bool
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wastenot",
	Short: "wastenot - local food wastage dashboard",
	Long: `wastenot tracks surplus food listings, claims, providers and receivers
in a local SQLite database and serves an interactive terminal dashboard
over it.

Run without arguments to open the dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbOverride != "" {
			cfg.Database.Path = dbOverride
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// The dashboard owns the terminal. Console logging would tear
		// its screen, so route logs to the configured file or drop them.
		if cmd.Use == "wastenot" && cfg.Logging.File == "" {
			logger = logging.Nop()
			return nil
		}
		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return dash.Run(st, cfg, logger)
	},
}

// initCmd creates the config file and an empty database
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and an empty database",
	Long: `Writes a default wastenot.yaml and creates the SQLite schema so the
other commands have something to talk to.

Run this once in the directory that should hold the data.`,
	RunE: runInit,
}

// seedCmd loads the bundled sample dataset
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample dataset",
	Long: `Populates the database with a small realistic dataset of providers,
receivers, food listings and claims. Existing data is left alone unless
--wipe is given.`,
	RunE: runSeed,
}

// reportCmd runs the built-in analytical queries
var reportCmd = &cobra.Command{
	Use:   "report [number|slug]",
	Short: "Run one of the built-in analytical reports",
	Long: `Runs a fixed analytical query and prints the result table.

Without arguments it lists the available reports. Use a report number or
slug to run one, --all to run every report, and --csv to write the
result to a CSV file instead of the terminal.

Examples:
  wastenot report
  wastenot report 4
  wastenot report claims-by-status --csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

// queryCmd runs ad-hoc SQL
var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run an ad-hoc SQL statement",
	Long: `Runs any SQL against the database. SELECT results are printed as a
table; writes report the number of affected rows. Use :name
placeholders with --param to bind values safely.

Examples:
  wastenot query "SELECT City, COUNT(*) FROM providers GROUP BY City"
  wastenot query "SELECT * FROM claims WHERE Status = :s" --param s=Pending
  wastenot query "SELECT * FROM food_listings" --csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

// addListingCmd inserts a food listing
var addListingCmd = &cobra.Command{
	Use:   "add-listing",
	Short: "Add a food listing",
	Long: `Inserts a new row into food_listings. Provider type and city are
looked up from the provider when left blank. The expiry date accepts
most common formats and is stored as YYYY-MM-DD.

Example:
  wastenot add-listing --name "Veg Pulao" --quantity 20 --provider 3 \
    --expiry "Sep 30, 2026" --food-type Vegetarian --meal-type Lunch`,
	RunE: runAddListing,
}

// updateClaimCmd moves a claim through its lifecycle
var updateClaimCmd = &cobra.Command{
	Use:   "update-claim",
	Short: "Set the status of a claim",
	Long: `Sets a claim to Pending, Completed or Cancelled.

Example:
  wastenot update-claim --id 7 --status Completed`,
	RunE: runUpdateClaim,
}

// deleteListingCmd removes a food listing
var deleteListingCmd = &cobra.Command{
	Use:   "delete-listing",
	Short: "Delete a food listing",
	Long: `Removes a row from food_listings by its Food_ID. Claims pointing at
the listing are left in place and show up in 'wastenot check'.

Example:
  wastenot delete-listing --id 12`,
	RunE: runDeleteListing,
}

// checkCmd runs the data integrity checks
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run data integrity checks",
	Long: `Checks for claims pointing at missing listings or receivers, listings
with unknown providers, invalid claim statuses and zero quantities.
Exits non-zero when anything is wrong.`,
	RunE: runCheck,
}

// schemaCmd prints table structure
var schemaCmd = &cobra.Command{
	Use:   "schema [table]",
	Short: "Show the structure of the data tables",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchema,
}

var (
	seedWipe    bool
	reportAll   bool
	reportCSV   bool
	queryParams []string
	queryCSV    bool

	addName     string
	addQuantity int64
	addExpiry   string
	addProvider int64
	addPType    string
	addCity     string
	addFoodType string
	addMealType string

	updateID     int64
	updateStatus string
	deleteID     int64
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "Database file (overrides the config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	seedCmd.Flags().BoolVar(&seedWipe, "wipe", false, "Replace any existing data")

	reportCmd.Flags().BoolVar(&reportAll, "all", false, "Run every report")
	reportCmd.Flags().BoolVar(&reportCSV, "csv", false, "Write results to CSV files")

	queryCmd.Flags().StringArrayVar(&queryParams, "param", nil, "Bind a :name placeholder, as name=value (repeatable)")
	queryCmd.Flags().BoolVar(&queryCSV, "csv", false, "Write the result to query_results.csv")

	addListingCmd.Flags().StringVar(&addName, "name", "", "Food name (required)")
	addListingCmd.Flags().Int64Var(&addQuantity, "quantity", 0, "Quantity in portions (required)")
	addListingCmd.Flags().StringVar(&addExpiry, "expiry", "", "Expiry date, most formats accepted")
	addListingCmd.Flags().Int64Var(&addProvider, "provider", 0, "Provider_ID offering the food (required)")
	addListingCmd.Flags().StringVar(&addPType, "provider-type", "", "Provider type (defaults to the provider's)")
	addListingCmd.Flags().StringVar(&addCity, "city", "", "Listing city (defaults to the provider's)")
	addListingCmd.Flags().StringVar(&addFoodType, "food-type", "", "Vegetarian, Non-Vegetarian or Vegan")
	addListingCmd.Flags().StringVar(&addMealType, "meal-type", "", "Breakfast, Lunch, Dinner or Snacks")
	addListingCmd.MarkFlagRequired("name")
	addListingCmd.MarkFlagRequired("quantity")
	addListingCmd.MarkFlagRequired("provider")

	updateClaimCmd.Flags().Int64Var(&updateID, "id", 0, "Claim_ID to update (required)")
	updateClaimCmd.Flags().StringVar(&updateStatus, "status", "", "New status (required)")
	updateClaimCmd.MarkFlagRequired("id")
	updateClaimCmd.MarkFlagRequired("status")

	deleteListingCmd.Flags().Int64Var(&deleteID, "id", 0, "Food_ID to delete (required)")
	deleteListingCmd.MarkFlagRequired("id")

	// Add commands to root
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(addListingCmd)
	rootCmd.AddCommand(updateClaimCmd)
	rootCmd.AddCommand(deleteListingCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens the configured database with the configured cache.
func openStore() (*store.Store, error) {
	opts := []store.Option{
		store.WithLogger(logger),
		store.WithBusyTimeout(cfg.GetBusyTimeout()),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, store.WithCache(cfg.GetCacheTTL(), cfg.Cache.MaxEntries))
	} else {
		opts = append(opts, store.WithoutCache())
	}
	return store.Open(cfg.Database.Path, opts...)
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func printTable(title string, tbl *store.Table) {
	t := ui.NewSimpleTable(title, tbl.Columns)
	t.AddRows(tbl.StringRows())
	fmt.Println(t.View(ui.DefaultStyles()))
}

// runInit writes the default config and creates the schema
func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("✓ %s already exists\n", configPath)
	} else {
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		fmt.Printf("✓ wrote %s\n", configPath)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Printf("✓ database ready at %s\n", st.Path())
	fmt.Println("Run 'wastenot seed' to load the sample dataset.")
	return nil
}

// runSeed loads the sample dataset
func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	seeded, err := st.Seed(ctx, seedWipe)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Println("Database already has data. Use --wipe to replace it.")
		return nil
	}

	c, err := st.Counts(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d providers, %d receivers, %d listings, %d claims into %s\n",
		c.Providers, c.Receivers, c.Listings, c.Claims, st.Path())
	return nil
}

// runReport lists or executes the analytical reports
func runReport(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if reportAll {
		results, err := reports.RunAll(ctx, st)
		if err != nil {
			return err
		}
		for _, res := range results {
			if err := emitReport(res.Report, res.Table); err != nil {
				return err
			}
		}
		return nil
	}

	if len(args) == 0 {
		fmt.Println("Available reports")
		fmt.Println("=================")
		for _, r := range reports.All() {
			fmt.Printf("%2d  %-28s %s\n", r.Num, r.Slug, r.Title)
		}
		return nil
	}

	r, ok := reports.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown report %q, run 'wastenot report' for the list", args[0])
	}
	tbl, err := reports.Run(ctx, st, r)
	if err != nil {
		return err
	}
	return emitReport(r, tbl)
}

func emitReport(r reports.Report, tbl *store.Table) error {
	if reportCSV {
		path, err := store.ExportCSV(cfg.Export.Dir, "report-"+r.Slug+".csv", tbl)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s (%s)\n", path, english.Plural(len(tbl.Rows), "row", ""))
		return nil
	}
	printTable(fmt.Sprintf("%d. %s", r.Num, r.Title), tbl)
	return nil
}

// runQuery executes ad-hoc SQL with optional named parameters
func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	params := map[string]any{}
	for _, p := range queryParams {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return fmt.Errorf("malformed --param %q, want name=value", p)
		}
		params[name] = value
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	tbl, err := st.RunSQLWith(ctx, strings.Join(args, " "), params)
	if err != nil {
		return err
	}

	if queryCSV {
		path, err := store.ExportCSV(cfg.Export.Dir, "query_results.csv", tbl)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s (%s)\n", path, english.Plural(len(tbl.Rows), "row", ""))
		return nil
	}
	printTable(english.Plural(len(tbl.Rows), "row", ""), tbl)
	return nil
}

// runAddListing inserts a listing, backfilling provider details
func runAddListing(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	if strings.TrimSpace(addName) == "" {
		return fmt.Errorf("--name must not be blank")
	}
	if addQuantity < 0 {
		return fmt.Errorf("--quantity must not be negative")
	}
	expiry, err := store.ParseExpiry(addExpiry)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	l := store.Listing{
		FoodName:     addName,
		Quantity:     addQuantity,
		ExpiryDate:   expiry,
		ProviderID:   addProvider,
		ProviderType: addPType,
		Location:     addCity,
		FoodType:     addFoodType,
		MealType:     addMealType,
	}
	if l.ProviderType == "" || l.Location == "" {
		ptype, city, err := st.ProviderInfo(ctx, l.ProviderID)
		if err != nil {
			return err
		}
		if l.ProviderType == "" {
			l.ProviderType = ptype
		}
		if l.Location == "" {
			l.Location = city
		}
	}

	id, err := st.InsertListing(ctx, l)
	if err != nil {
		return err
	}
	logger.Info("listing added", zap.Int64("food_id", id), zap.String("name", l.FoodName))
	fmt.Printf("Listing %d added (%s, %s)\n", id, l.FoodName, l.Location)
	return nil
}

// runUpdateClaim sets a claim status
func runUpdateClaim(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	var status string
	for _, s := range store.Statuses() {
		if strings.EqualFold(updateStatus, s) {
			status = s
			break
		}
	}
	if status == "" {
		return fmt.Errorf("--status must be one of %s", strings.Join(store.Statuses(), ", "))
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpdateClaimStatus(ctx, updateID, status); err != nil {
		return err
	}
	fmt.Printf("Claim %d set to %s\n", updateID, status)
	return nil
}

// runDeleteListing removes a listing
func runDeleteListing(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteListing(ctx, deleteID); err != nil {
		return err
	}
	fmt.Printf("Listing %d deleted\n", deleteID)
	return nil
}

// runCheck reports integrity findings and fails when any check does
func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	findings, err := st.Integrity(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Integrity checks")
	fmt.Println("================")
	for _, f := range findings {
		if f.Count == 0 {
			fmt.Printf("✓ %s\n", f.Detail)
		} else {
			fmt.Printf("✗ %s: %s\n", f.Detail, english.Plural(int(f.Count), "row", ""))
		}
	}

	if problems := store.Problems(findings); len(problems) > 0 {
		return fmt.Errorf("%s failed", english.Plural(len(problems), "check", ""))
	}
	fmt.Println("All checks passed.")
	return nil
}

// runSchema prints PRAGMA table_info for one or all tables
func runSchema(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	tables := store.Tables()
	if len(args) == 1 {
		tables = []string{args[0]}
	}
	for _, name := range tables {
		tbl, err := st.TableInfo(ctx, name)
		if err != nil {
			return err
		}
		printTable(name, tbl)
	}
	return nil
}
