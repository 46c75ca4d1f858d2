// Command questions queries a questions database from the shell and prints
// the result as JSON.
//
//	questions [--config FILE] [--db PATH] [--log-level L] [--seed] <entity> <action> [args]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/Skryldev/questionsdb/config"
	"github.com/Skryldev/questionsdb/db"
	"github.com/Skryldev/questionsdb/repo"
	"github.com/Skryldev/questionsdb/schema"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Stdout, os.Stderr, os.Args[1:], config.EnvMap(os.Environ())))
}

type options struct {
	configPath string
	database   string
	logLevel   string
	seed       bool
	json       bool
}

func run(ctx context.Context, out, errOut io.Writer, args []string, env map[string]string) int {
	flagSet := flag.NewFlagSet("questions", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(false)

	var opts options
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "JSONC config file (default "+config.DefaultPath+" if present)")
	flagSet.StringVar(&opts.database, "db", "", "database file, overrides config and QUESTIONS_DB")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.BoolVar(&opts.seed, "seed", false, "create the schema and load demo data into an empty database")
	flagSet.BoolVar(&opts.json, "json-log", false, "log as JSON instead of text")
	help := flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		printUsage(errOut, flagSet)
		return exitUsage
	}
	if *help {
		printUsage(out, flagSet)
		return exitOK
	}
	rest := flagSet.Args()
	if len(rest) < 2 {
		printUsage(errOut, flagSet)
		return exitUsage
	}

	cmd, err := lookupCommand(rest[0], rest[1], rest[2:])
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath, env)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return exitError
	}
	if opts.database != "" {
		cfg.Database = opts.database
	}
	if opts.logLevel != "" {
		if cfg.LogLevel, err = config.ParseLevel(opts.logLevel); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return exitUsage
		}
	}

	logger := newLogger(errOut, cfg.LogLevel, opts.json).With("run", uuid.NewString())

	counter := &db.QueryCounter{}
	dbCfg, err := cfg.DBConfig(cfg.LogHook(logger), db.NewMetricsHook(counter))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return exitError
	}
	provider := db.NewProvider(dbCfg)
	defer provider.Close()

	database, err := provider.DB()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return exitError
	}

	if opts.seed {
		if err := seed(ctx, database, logger); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return exitError
		}
	}

	result, err := cmd.run(ctx, repo.NewStore(database))
	logger.Debug("questions: command finished",
		"entity", cmd.entity, "action", cmd.action,
		"statements", counter.Total(), "elapsed", counter.Elapsed())
	if err != nil {
		if db.IsNotFound(err) {
			fmt.Fprintf(errOut, "error: %s %s not found\n", cmd.entity, strings.Join(cmd.args, " "))
		} else {
			fmt.Fprintln(errOut, "error:", err)
		}
		return exitError
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return exitError
	}
	return exitOK
}

// seed creates the schema and loads the demo data, unless users exist.
func seed(ctx context.Context, d *db.DB, logger *slog.Logger) error {
	if err := schema.Apply(ctx, d); err != nil {
		return err
	}
	users, err := repo.NewUserRepo(d).List(ctx, 1, 0)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		logger.Info("questions: database already has data, not seeding")
		return nil
	}
	if err := schema.Seed(ctx, d); err != nil {
		return err
	}
	logger.Info("questions: demo data loaded")
	return nil
}

func newLogger(w io.Writer, level slog.Level, asJSON bool) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

var errUsage = errors.New("usage")

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, `Usage: questions [flags] <entity> <action> [args]

Entities and actions:
  user      show ID | find FNAME LNAME | questions ID | replies ID
            followed ID | liked ID | karma ID | list [LIMIT [OFFSET]]
  question  show ID | author ID | replies ID | followers ID | likers ID
            likes ID | tags ID | most-followed N | most-liked N | list [LIMIT [OFFSET]]
  reply     show ID | parent ID | children ID | question ID
  tag       most-popular | questions NAME

Flags:`)
	fmt.Fprint(w, fs.FlagUsages())
}
