// Пакет access: иерархия ролей и проверка доступа к защищённым разделам.
// Роли упорядочены по уровню привилегий: member < secretary < admin.
// Неизвестная или пустая роль имеет уровень 0 и не проходит ни одну проверку.
package access

import (
	"errors"
	"fmt"
	"strings"
)

// Role: роль пользователя сайта.
type Role string

// Роли в порядке возрастания привилегий.
const (
	RoleMember    Role = "member"
	RoleSecretary Role = "secretary"
	RoleAdmin     Role = "admin"
)

// ErrUnknownRole возвращается при разборе строки, не являющейся ролью.
var ErrUnknownRole = errors.New("unknown role")

// roleLevel: уровень роли для сравнения. Единственный источник истины об иерархии.
var roleLevel = map[Role]int{
	RoleMember:    1,
	RoleSecretary: 2,
	RoleAdmin:     3,
}

// ResolveRoleLevel возвращает уровень роли по её имени.
// Для нераспознанного или пустого значения возвращает 0.
func ResolveRoleLevel(role string) int {
	return roleLevel[Role(role)]
}

// Level возвращает уровень роли.
func (r Role) Level() int {
	return roleLevel[r]
}

// Valid проверяет, является ли значение известной ролью.
func (r Role) Valid() bool {
	_, ok := roleLevel[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// ParseRole разбирает строку в роль, игнорируя регистр и пробелы по краям.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Roles возвращает все роли в порядке возрастания уровня.
func Roles() []Role {
	return []Role{RoleMember, RoleSecretary, RoleAdmin}
}
