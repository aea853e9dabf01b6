// crmctl tareas de operación: migraciones, datos de demo e importación de planillas.
//
// Uso:
//
//	crmctl migrate
//	crmctl seed --email admin@demo.test --password secret123
//	crmctl import --email admin@demo.test --password secret123 --module leads leads.csv
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/jhoicas/crm-api/pkg/config"
	"github.com/jhoicas/crm-api/pkg/logger"
)

var (
	version = "dev"
	cli     struct {
		Migrate MigrateCmd `cmd:"" help:"Aplica las migraciones pendientes."`
		Seed    SeedCmd    `cmd:"" help:"Crea una org de demo con datos de ejemplo."`
		Import  ImportCmd  `cmd:"" help:"Importa un CSV o XLSX en un módulo."`
		Debug   bool       `help:"Logs en nivel debug."`
		Version kong.VersionFlag
	}
)

// Globals dependencias compartidas por los comandos.
type Globals struct {
	Config *config.Config
	Log    *logger.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("crmctl"),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)))

	cfg, err := config.Load()
	cmd.FatalIfErrorf(err)
	level := cfg.App.LogLevel
	if cli.Debug {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level})

	cmd.FatalIfErrorf(cmd.Run(&Globals{Config: cfg, Log: log}))
}
