package domain

import "strings"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAuthor Role = "author"
	RoleReader Role = "reader"
)

// DefaultRole 注册默认角色
const DefaultRole = RoleAuthor

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleAuthor, RoleReader:
		return r, true
	}
	return "", false
}

func (r Role) bit() RoleSet {
	switch r {
	case RoleAdmin:
		return 1 << 0
	case RoleAuthor:
		return 1 << 1
	case RoleReader:
		return 1 << 2
	}
	return 0
}

// RoleSet 路由允许的角色集合；零值表示只要求登录
type RoleSet uint8

func RolesOf(rs ...Role) RoleSet {
	var s RoleSet
	for _, r := range rs {
		s |= r.bit()
	}
	return s
}

func (s RoleSet) Empty() bool { return s == 0 }

func (s RoleSet) Allows(r Role) bool {
	b := r.bit()
	return b != 0 && s&b != 0
}

var (
	AdminOnly = RolesOf(RoleAdmin)
	Writers   = RolesOf(RoleAuthor, RoleAdmin)
)
