package authorize

import (
	"context"
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

type Action string
type Resource string
type Role string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Power action: CRUD + list
	ActionManage Action = "manage"
)

const WildcardAction Action = "*"

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionManage: {},
}

const (
	WildcardResource Resource = "*"

	ResourcePatient      Resource = "patient"
	ResourceDoctor       Resource = "doctor"
	ResourceSchedule     Resource = "schedule"
	ResourceAppointment  Resource = "appointment"
	ResourceConsultation Resource = "consultation"
	ResourcePayment      Resource = "payment"
	ResourceDepartment   Resource = "department"
	ResourceSpecialty    Resource = "specialty"
	ResourceDashboard    Resource = "dashboard"
)

var KnownResources = map[Resource]struct{}{
	ResourcePatient: {}, ResourceDoctor: {}, ResourceSchedule: {},
	ResourceAppointment: {}, ResourceConsultation: {}, ResourcePayment: {},
	ResourceDepartment: {}, ResourceSpecialty: {}, ResourceDashboard: {},
}

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

var KnownRoles = map[Role]struct{}{
	RoleAdmin: {}, RoleDoctor: {}, RolePatient: {},
}

// Flat RBAC: p.sub is a role name, no tenancy domains. Row-level ownership
// (a doctor acting on someone else's appointment) is enforced in the
// services, not here.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (r.obj == p.obj || p.obj == "*") && (r.act == p.act || p.act == "*" || p.act == "manage")
`

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	Enforce(ctx context.Context, role Role, object Resource, action Action) (bool, error)

	// MustEnforce is convenience for services: return ErrForbidden if not allowed.
	MustEnforce(ctx context.Context, role Role, object Resource, action Action) error
}

// Authorization is a thin typed wrapper around casbin.Enforcer with
// in-process seeded policies.
type Authorization struct {
	enforcer *casbin.Enforcer
}

func New() (*Authorization, error) {
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	a := &Authorization{enforcer: e}
	if err := a.seed(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Authorization) Enforce(ctx context.Context, role Role, object Resource, action Action) (bool, error) {
	_ = ctx // reserved for tracing/logging later

	if role == "" {
		return false, fmt.Errorf("%w: role is empty", ErrInvalidArgs)
	}
	if _, ok := KnownRoles[role]; !ok {
		return false, fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, role)
	}
	if _, ok := KnownResources[object]; !ok && object != WildcardResource {
		return false, fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, object)
	}
	if _, ok := KnownActions[action]; !ok && action != WildcardAction {
		return false, fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, action)
	}

	return a.enforcer.Enforce(string(role), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, role Role, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, role, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
