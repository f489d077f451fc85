package domain

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type Action int

const (
	ActionReadArticle Action = iota
	ActionCreateArticle
	ActionUpdateArticle
	ActionDeleteArticle
)

// Permits 纯函数角色检查。注意：delete 只要求登录（任意角色），
// 这是线上既有策略，不要改成 owner-only。
func Permits(r Role, a Action) bool {
	switch a {
	case ActionReadArticle:
		return true
	case ActionCreateArticle, ActionUpdateArticle:
		return r == RoleAdmin
	case ActionDeleteArticle:
		return r == RoleAdmin || r == RoleUser
	}
	return false
}
