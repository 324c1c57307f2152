package access

// Пути перенаправления при отказе в доступе.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Subject: текущий аутентифицированный пользователь.
type Subject struct {
	ID   string
	Name string
	Role string
}

// Level возвращает уровень роли субъекта.
func (s *Subject) Level() int {
	if s == nil {
		return 0
	}
	return ResolveRoleLevel(s.Role)
}

// Requirement: набор ролей, любая из которых открывает доступ.
// Пустой набор означает отсутствие требования: доступ есть у любого
// аутентифицированного пользователя.
type Requirement []Role

// Require собирает требование из перечисленных ролей.
func Require(roles ...Role) Requirement {
	return Requirement(roles)
}

// SatisfiedBy проверяет требование для уровня level.
// Каждая роль сравнивается отдельно, достаточно одного совпадения.
func (req Requirement) SatisfiedBy(level int) bool {
	if len(req) == 0 {
		return true
	}
	for _, r := range req {
		if level >= r.Level() {
			return true
		}
	}
	return false
}

// Outcome: результат проверки доступа.
type Outcome int

const (
	// Pending: сессия ещё определяется, вызывающий показывает индикатор загрузки.
	Pending Outcome = iota
	// DenyNoSession: пользователя нет, нужен переход на страницу входа.
	DenyNoSession
	// DenyInsufficientRole: пользователь есть, но роли недостаточно.
	DenyInsufficientRole
	// Allow: доступ разрешён.
	Allow
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case DenyNoSession:
		return "deny_no_session"
	case DenyInsufficientRole:
		return "deny_insufficient_role"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decision: решение шлюза вместе с адресом перенаправления.
type Decision struct {
	Outcome Outcome
	// Redirect заполнен для отказов: LoginPath или DashboardPath.
	Redirect string
	// From: исходно запрошенный адрес для возврата после входа.
	From string
}

// Allowed сообщает, разрешён ли доступ.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// SessionResolution: состояние определения сессии.
// Resolved=false соответствует состоянию, когда проверка сессии ещё идёт.
type SessionResolution struct {
	Resolved bool
	Subject  *Subject
}

// Authorize принимает решение для уже определённого субъекта.
// from: запрошенный адрес, сохраняется при отказе без сессии.
func Authorize(subject *Subject, required Requirement, from string) Decision {
	if subject == nil {
		return Decision{Outcome: DenyNoSession, Redirect: LoginPath, From: from}
	}
	if !required.SatisfiedBy(subject.Level()) {
		return Decision{Outcome: DenyInsufficientRole, Redirect: DashboardPath}
	}
	return Decision{Outcome: Allow}
}

// Evaluate учитывает незавершённое определение сессии.
func Evaluate(res SessionResolution, required Requirement, from string) Decision {
	if !res.Resolved {
		return Decision{Outcome: Pending}
	}
	return Authorize(res.Subject, required, from)
}

// IsManager сообщает, может ли субъект управлять календарём (секретарь и выше).
func IsManager(subject *Subject) bool {
	return subject.Level() >= RoleSecretary.Level()
}
