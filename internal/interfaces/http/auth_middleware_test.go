package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	apphttp "github.com/jhoicas/crm-api/internal/interfaces/http"
	"github.com/jhoicas/crm-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeAuth acepta un único token y devuelve el principal configurado.
type fakeAuth struct {
	token string
	p     acl.Principal
	err   error
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (acl.Principal, *entity.User, error) {
	if f.err != nil {
		return acl.Principal{}, nil, f.err
	}
	if token != f.token {
		return acl.Principal{}, nil, domain.ErrUnauthorized
	}
	return f.p, &entity.User{ID: f.p.UserID, OrgID: f.p.OrgID, Role: f.p.Role}, nil
}

// fakeModules permite o niega todo; err simula una caída de la DB.
type fakeModules struct {
	allow bool
	err   error
	write *bool
}

func (f *fakeModules) HasModuleAccess(_ context.Context, _ acl.Principal, _ string, write bool) (bool, error) {
	f.write = &write
	return f.allow, f.err
}

const goodToken = "token-valido"

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para validar el token y cargar locals
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve el principal si pasa los middlewares
func buildTestApp(role string, allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	auth := fakeAuth{token: goodToken, p: acl.Principal{UserID: "u-1", OrgID: "org-1", Role: role}}
	app.Get("/protected",
		apphttp.AuthMiddleware(auth),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			p := apphttp.GetPrincipal(c)
			return c.JSON(fiber.Map{"ok": true, "role": p.Role, "org": p.OrgID})
		},
	)
	return app
}

// doRequest lanza GET /protected con el header y la cookie indicados.
func doRequest(t *testing.T, app *fiber.App, authHeader, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: apphttp.TokenCookie, Value: cookie})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_BearerValido(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleUser), "Bearer "+goodToken, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "org-1", body["org"])
	assert.Equal(t, entity.RoleUser, body["role"])
}

func TestAuthMiddleware_CookieValida(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleUser), "", goodToken)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "la cookie token sustituye al header")
}

func TestAuthMiddleware_SinToken401(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleUser), "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, resp))
}

func TestAuthMiddleware_FormatoInvalido401(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleUser), "Token "+goodToken, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, resp))
}

func TestAuthMiddleware_TokenInvalido401(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleUser), "Bearer otro", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}

// Un fallo de infraestructura al cargar el usuario no es un 401.
func TestAuthMiddleware_FalloDeRepositorio500(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	app.Get("/protected", apphttp.AuthMiddleware(fakeAuth{err: errors.New("db caída")}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	resp := doRequest(t, app, "Bearer x", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminSiemprePasa(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleAdmin, entity.RoleManager), "Bearer "+goodToken, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_RolPermitido(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleManager, entity.RoleManager), "Bearer "+goodToken, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_RolBloqueado403(t *testing.T) {
	resp := doRequest(t, buildTestApp(entity.RoleReadOnly, entity.RoleManager), "Bearer "+goodToken, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireModule
// ──────────────────────────────────────────────────────────────────────────────

func moduleApp(mods *fakeModules, read bool) *fiber.App {
	app := fiber.New()
	auth := fakeAuth{token: goodToken, p: acl.Principal{UserID: "u-1", OrgID: "org-1", Role: entity.RoleUser}}
	guard := apphttp.RequireModule(entity.ModuleLeads, mods, logger.Nop())
	if read {
		guard = apphttp.RequireModuleRead(entity.ModuleLeads, mods, logger.Nop())
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Get("/leads", apphttp.AuthMiddleware(auth), guard, ok)
	app.Post("/leads", apphttp.AuthMiddleware(auth), guard, ok)
	return app
}

func moduleRequest(t *testing.T, app *fiber.App, method string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/leads", nil)
	req.Header.Set("Authorization", "Bearer "+goodToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireModule_MetodoDecideEscritura(t *testing.T) {
	mods := &fakeModules{allow: true}
	app := moduleApp(mods, false)

	resp := moduleRequest(t, app, http.MethodGet)
	resp.Body.Close()
	require.NotNil(t, mods.write)
	assert.False(t, *mods.write, "GET pide lectura")

	resp = moduleRequest(t, app, http.MethodPost)
	resp.Body.Close()
	assert.True(t, *mods.write, "POST pide escritura")
}

func TestRequireModuleRead_PostPideLectura(t *testing.T) {
	mods := &fakeModules{allow: true}
	resp := moduleRequest(t, moduleApp(mods, true), http.MethodPost)
	resp.Body.Close()
	require.NotNil(t, mods.write)
	assert.False(t, *mods.write)
}

func TestRequireModule_Denegado403(t *testing.T) {
	resp := moduleRequest(t, moduleApp(&fakeModules{allow: false}, false), http.MethodGet)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "MODULE_DENIED", errorCode(t, resp))
}

func TestRequireModule_FalloDeInfraestructura503(t *testing.T) {
	resp := moduleRequest(t, moduleApp(&fakeModules{err: errors.New("timeout")}, false), http.MethodGet)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "MODULE_CHECK_FAILED", errorCode(t, resp))
}

// El contexto de la petición lleva IP y user agent hacia la auditoría.
func TestAuthMiddleware_ClienteEnContexto(t *testing.T) {
	app := fiber.New()
	auth := fakeAuth{token: goodToken, p: acl.Principal{UserID: "u-1", OrgID: "org-1", Role: entity.RoleAdmin}}
	var got usecase.Client
	app.Get("/protected", apphttp.AuthMiddleware(auth), func(c *fiber.Ctx) error {
		got = usecase.ClientFrom(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+goodToken)
	req.Header.Set("User-Agent", "crm-test/1.0")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "crm-test/1.0", got.UA)
}
