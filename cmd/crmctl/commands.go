package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/crm-api/internal/application/auth"
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/infrastructure/importer"
	"github.com/jhoicas/crm-api/internal/infrastructure/postgres"
)

// MigrateCmd aplica las migraciones embebidas.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := postgres.NewPool(ctx, g.Config.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	n, err := postgres.MigrateCount(ctx, pool)
	if err != nil {
		return err
	}
	g.Log.Info().Int("applied", n).Msg("migraciones aplicadas")
	return nil
}

// SeedCmd crea un admin con su org y algunos registros de ejemplo.
type SeedCmd struct {
	Name     string `default:"Demo Admin" help:"Nombre del admin."`
	Email    string `required:"" help:"Email del admin."`
	Password string `required:"" help:"Contraseña del admin."`
	Org      string `default:"" help:"Nombre de la org (por defecto \"<nombre>'s Org\")."`
}

var seedLeads = []string{
	`{"firstName":"Ana","lastName":"Gómez","email":"ana@example.com","source":"Web"}`,
	`{"firstName":"Bruno","lastName":"Díaz","email":"bruno@example.com","source":"Referral","status":"Contacted"}`,
	`{"name":"Carla Ruiz","company":"Globex","source":"Event","status":"Qualified"}`,
}

var seedDeals = []string{
	`{"name":"Renovación anual","amount":"12,000","stage":"proposal","account":"Globex"}`,
	`{"name":"Piloto","amount":"3,500","stage":"qualification","account":"Initech"}`,
}

func (c *SeedCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := postgres.Connect(ctx, g.Config.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	authUC, audit := authFor(pool, g)
	out, err := authUC.Signup(ctx, dto.SignupRequest{Name: c.Name, Email: c.Email, Password: c.Password, OrgName: c.Org})
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	p, _, err := authUC.Authenticate(ctx, out.Token)
	if err != nil {
		return err
	}

	pipelines := usecase.NewPipelineUseCase(postgres.NewPipelineRepository(pool), audit)
	leads := usecase.NewLeadUseCase(postgres.NewScopedStore(pool, postgres.LeadTable), audit)
	deals := usecase.NewDealUseCase(postgres.NewScopedStore(pool, postgres.DealTable), pipelines, audit)
	for _, body := range seedLeads {
		if _, err := leads.Create(ctx, p, []byte(body)); err != nil {
			return fmt.Errorf("lead: %w", err)
		}
	}
	for _, body := range seedDeals {
		if _, err := deals.Create(ctx, p, []byte(body)); err != nil {
			return fmt.Errorf("deal: %w", err)
		}
	}
	g.Log.Info().
		Str("org_id", p.OrgID).
		Str("email", c.Email).
		Int("leads", len(seedLeads)).
		Int("deals", len(seedDeals)).
		Msg("datos de demo creados")
	return nil
}

// ImportCmd importa una planilla con las credenciales de un usuario de la org.
type ImportCmd struct {
	Email    string `required:"" help:"Email o usuario con permiso de escritura."`
	Password string `required:"" help:"Contraseña."`
	Module   string `required:"" enum:"leads,contacts,accounts,deals,activities" help:"Módulo destino."`
	File     string `arg:"" type:"existingfile" help:"Archivo .csv o .xlsx."`
}

func (c *ImportCmd) Run(ctx context.Context, g *Globals) error {
	pool, err := postgres.NewPool(ctx, g.Config.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	authUC, audit := authFor(pool, g)
	login, err := authUC.Signin(ctx, dto.SigninRequest{Identifier: c.Email, Password: c.Password})
	if err != nil {
		return fmt.Errorf("signin: %w", err)
	}
	p, _, err := authUC.Authenticate(ctx, login.Token)
	if err != nil {
		return err
	}

	policies := postgres.NewPolicyRepository(pool)
	importUC := importFor(pool, audit, g)
	target, _ := importUC.Target(c.Module)
	ok, err := usecase.NewModuleService(policies).HasModuleAccess(ctx, p, target, true)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("sin permiso de escritura en %s", target)
	}

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()
	res, err := importUC.Import(ctx, p, c.Module, filepath.Base(c.File), f)
	if err != nil {
		return err
	}
	g.Log.Info().Int("count", res.Count).Int("skipped", res.Skipped).Str("module", c.Module).Msg("importación completa")
	return nil
}

func authFor(pool *pgxpool.Pool, g *Globals) (*auth.AuthUseCase, *usecase.AuditUseCase) {
	audit := usecase.NewAuditUseCase(postgres.NewAuditRepository(pool), g.Log)
	return auth.NewAuthUseCase(
		postgres.NewUserRepository(pool),
		postgres.NewInviteRepository(pool),
		postgres.NewPolicyRepository(pool),
		postgres.NewTxRunner(pool),
		audit,
		auth.JWTConfig{Secret: g.Config.JWT.Secret, ExpMinutes: 5, Issuer: g.Config.JWT.Issuer},
	), audit
}

func importFor(pool *pgxpool.Pool, audit *usecase.AuditUseCase, g *Globals) *usecase.ImportUseCase {
	pipelines := usecase.NewPipelineUseCase(postgres.NewPipelineRepository(pool), audit)
	return usecase.NewImportUseCase(importer.Reader{},
		usecase.NewLeadUseCase(postgres.NewScopedStore(pool, postgres.LeadTable), audit),
		usecase.NewContactUseCase(postgres.NewScopedStore(pool, postgres.ContactTable), audit),
		usecase.NewAccountUseCase(postgres.NewScopedStore(pool, postgres.AccountTable), audit),
		usecase.NewDealUseCase(postgres.NewScopedStore(pool, postgres.DealTable), pipelines, audit),
		usecase.NewTaskUseCase(postgres.NewScopedStore(pool, postgres.TaskTable), audit),
		g.Log,
	)
}
