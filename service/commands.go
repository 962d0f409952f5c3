package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quill/app/config"
	"quill/app/logger"
	"quill/app/repositories"
)

// HandleCommand runs a CLI subcommand and returns its exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd := args[0]
	if cmd == "help" {
		printHelp()
		return 0
	}
	if cmd == "version" {
		fmt.Printf("quill version %s\n", Version)
		return 0
	}
	if cmd == "restore" && len(args) < 2 {
		fmt.Println("Error: backup file path required for restore")
		return 1
	}

	run, ok := map[string]func(cfg *config.Config) int{
		"serve":   RunAppServer,
		"clean":   clean,
		"init":    initDb,
		"backup":  backup,
		"restore": func(cfg *config.Config) int { return restore(cfg, args[1]) },
	}[cmd]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		return 1
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return run(cfg)
}

// printHelp prints help for the subcommands.
func printHelp() {
	helpText := `Usage: quill <command>

Commands:
  serve                           Run the blog API
  clean                           Delete the configured database
  init                            Initialize a new empty database
  backup                          Create a backup of the database (badger only)
  restore [file]                  Restore database from backup (badger only)
  version                         Show version information
  help                            Display this help message

Configuration is read from QUILL_* environment variables.
`
	fmt.Println(helpText)
}

// clean removes the database.
func clean(cfg *config.Config) int {
	path := storePath(cfg)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(path); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDb initializes a new empty database.
func initDb(cfg *config.Config) int {
	if _, err := os.Stat(storePath(cfg)); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 1
	}
	if cfg.Store == config.StoreSQLite {
		if dir := filepath.Dir(cfg.SQLiteDSN); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				fmt.Printf("Failed to create database directory: %v\n", err)
				return 1
			}
		}
	}

	b, err := openBackend(cfg, logger.Nop())
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer b.close()

	fmt.Println("Database initialized successfully")
	return 0
}

func requireBadger(cfg *config.Config, action string) bool {
	if cfg.Store != config.StoreBadger {
		fmt.Printf("Error: %s is only supported for the badger store\n", action)
		return false
	}
	return true
}

// backup creates a backup of the database.
func backup(cfg *config.Config) int {
	if !requireBadger(cfg, "backup") {
		return 1
	}
	if _, err := os.Stat(cfg.BadgerPath); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := repositories.NewStore(cfg.BadgerPath, nil)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(cfg.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := store.Backup(f); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore restores the database from a backup.
func restore(cfg *config.Config, backupFile string) int {
	if !requireBadger(cfg, "restore") {
		return 1
	}

	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	} else if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(cfg.BadgerPath); err == nil {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(cfg.BadgerPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	if err := os.MkdirAll(cfg.BadgerPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := repositories.NewStore(cfg.BadgerPath, nil)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := store.Load(f); err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}
