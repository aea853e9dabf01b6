package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/acl"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	"github.com/jhoicas/crm-api/pkg/jwt"
)

// MinPassword largo mínimo de contraseña cuando la org no define otro.
const MinPassword = 6

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// SignupTxRunner ejecuta el alta de org + usuario (o la aceptación de una invitación) en una transacción.
type SignupTxRunner interface {
	RunSignup(ctx context.Context, fn func(
		orgRepo repository.OrgRepository,
		userRepo repository.UserRepository,
		inviteRepo repository.InviteRepository,
	) error) error
}

// Auditor registra eventos de auditoría sin fallar la operación.
type Auditor interface {
	Record(ctx context.Context, p acl.Principal, action, target string, meta map[string]any)
}

// AuthUseCase casos de uso de autenticación: registro, login y carga del usuario del token.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	inviteRepo repository.InviteRepository
	policyRepo repository.PolicyRepository
	tx         SignupTxRunner
	audit      Auditor
	jwtCfg     JWTConfig
	now        func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, inviteRepo repository.InviteRepository, policyRepo repository.PolicyRepository,
	tx SignupTxRunner, audit Auditor, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		policyRepo: policyRepo,
		tx:         tx,
		audit:      audit,
		jwtCfg:     jwtCfg,
		now:        time.Now,
	}
}

// Signup registra un usuario. Con token se une a la org de la invitación con su rol;
// sin token crea una org nueva y el usuario queda como admin y owner.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.LoginResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Token = strings.TrimSpace(in.Token)

	var (
		user *entity.User
		err  error
	)
	if in.Token != "" {
		user, err = uc.joinByInvite(ctx, in)
	} else {
		user, err = uc.createOrg(ctx, in)
	}
	if err != nil {
		return nil, err
	}
	uc.record(ctx, user, "user.signup", map[string]any{"invite": in.Token != ""})
	return uc.issue(user)
}

func (uc *AuthUseCase) joinByInvite(ctx context.Context, in dto.SignupRequest) (*entity.User, error) {
	inv, err := uc.inviteRepo.GetByToken(ctx, in.Token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInviteInvalid
		}
		return nil, err
	}
	now := uc.now().UTC()
	if !inv.Usable(now) {
		return nil, domain.ErrInviteInvalid
	}
	if in.Email == "" {
		in.Email = inv.Email
	}
	minLen := MinPassword
	if sp, err := uc.policyRepo.GetSecurity(ctx, inv.OrgID); err == nil && sp != nil {
		minLen = sp.PasswordMin
	}
	user, err := uc.newUser(ctx, in, minLen)
	if err != nil {
		return nil, err
	}
	user.OrgID = inv.OrgID
	user.Role = inv.Role
	user.Profile = inv.Profile
	if !entity.ValidRole(user.Role) {
		user.Role = entity.RoleUser
	}
	err = uc.tx.RunSignup(ctx, func(_ repository.OrgRepository, users repository.UserRepository, invites repository.InviteRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return invites.Accept(ctx, inv.ID, user.ID, now)
	})
	if err != nil {
		return nil, duplicate(err)
	}
	return user, nil
}

func (uc *AuthUseCase) createOrg(ctx context.Context, in dto.SignupRequest) (*entity.User, error) {
	user, err := uc.newUser(ctx, in, MinPassword)
	if err != nil {
		return nil, err
	}
	orgName := strings.TrimSpace(in.OrgName)
	if orgName == "" {
		first := strings.Fields(user.Name)
		owner := user.Name
		if len(first) > 0 {
			owner = first[0]
		}
		orgName = owner + "'s Org"
	}
	org := &entity.Org{
		ID:        uuid.New().String(),
		Name:      orgName,
		OwnerID:   user.ID,
		Plan:      "free",
		Timezone:  entity.DefaultTimezone,
		Locale:    entity.DefaultLocale,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.CreatedAt,
	}
	user.OrgID = org.ID
	user.Role = entity.RoleAdmin
	err = uc.tx.RunSignup(ctx, func(orgs repository.OrgRepository, users repository.UserRepository, _ repository.InviteRepository) error {
		if err := orgs.Create(ctx, org); err != nil {
			return err
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		return nil, duplicate(err)
	}
	return user, nil
}

// newUser valida identificadores y contraseña y arma el usuario (sin org ni rol).
func (uc *AuthUseCase) newUser(ctx context.Context, in dto.SignupRequest, minLen int) (*entity.User, error) {
	if in.Email == "" && in.Username == "" && in.Phone == "" {
		return nil, domain.Invalid("email", "se requiere email, teléfono o username")
	}
	if len(in.Password) < minLen {
		return nil, domain.Invalid("password", "demasiado corta")
	}
	taken, err := uc.userRepo.Taken(ctx, in.Email, in.Username, in.Phone)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.TrimSpace(in.FirstName + " " + in.LastName)
	}
	if name == "" {
		name = firstNonEmpty(in.Email, in.Username, in.Phone)
	}
	now := uc.now().UTC()
	return &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        in.Email,
		Username:     in.Username,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Status:       entity.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Signin verifica identificador y contraseña y emite un token.
func (uc *AuthUseCase) Signin(ctx context.Context, in dto.SigninRequest) (*dto.LoginResponse, error) {
	login := strings.TrimSpace(in.Login())
	if login == "" || in.Password == "" {
		return nil, domain.Invalid("identifier", "credenciales requeridas")
	}
	user, err := uc.userRepo.GetByIdentifier(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	uc.record(ctx, user, "user.signin", nil)
	return uc.issue(user)
}

// Authenticate valida el token y carga el usuario vigente; el rol sale de la DB, no del token.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (acl.Principal, *entity.User, error) {
	userID, _, _, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return acl.Principal{}, nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return acl.Principal{}, nil, domain.ErrUnauthorized
		}
		return acl.Principal{}, nil, err
	}
	if !user.IsActive() {
		return acl.Principal{}, nil, domain.ErrUnauthorized
	}
	return PrincipalOf(user), user, nil
}

// PrincipalOf principal de ACL de un usuario.
func PrincipalOf(u *entity.User) acl.Principal {
	return acl.Principal{UserID: u.ID, OrgID: u.OrgID, Role: u.Role, Name: u.Name, Email: u.Email}
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.OrgID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *ToUserResponse(user)}, nil
}

func (uc *AuthUseCase) record(ctx context.Context, user *entity.User, action string, meta map[string]any) {
	if uc.audit == nil {
		return
	}
	uc.audit.Record(ctx, PrincipalOf(user), action, "user:"+user.ID, meta)
}

// duplicate traduce la violación de unicidad del alta a email ya registrado.
func duplicate(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.ErrEmailAlreadyExists
	}
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ToUserResponse salida pública de un usuario.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		OrgID:     u.OrgID,
		Name:      u.Name,
		Email:     u.Email,
		Username:  u.Username,
		Phone:     u.Phone,
		Role:      u.Role,
		Profile:   u.Profile,
		ManagerID: u.ManagerID,
		Avatar:    u.Avatar,
		Status:    u.Status,
		Active:    u.IsActive(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
