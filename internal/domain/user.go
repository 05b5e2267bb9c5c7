package domain

import "time"

// Role representa el nivel de acceso de un usuario, ordenado de menor a mayor.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
	RoleSuperAdmin
)

var roleNames = map[Role]string{
	RoleUser:       "user",
	RoleAdmin:      "admin",
	RoleSuperAdmin: "super_admin",
}

var rolesByName = map[string]Role{
	"user":        RoleUser,
	"admin":       RoleAdmin,
	"super_admin": RoleSuperAdmin,
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "user"
}

// AtLeast indica si el rol alcanza o supera el minimo requerido.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// ParseRole convierte el nombre de un rol en su valor ordenado.
func ParseRole(name string) (Role, bool) {
	role, ok := rolesByName[name]
	return role, ok
}

func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (r *Role) UnmarshalJSON(data []byte) error {
	name := string(data)
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		name = name[1 : len(name)-1]
	}
	role, ok := rolesByName[name]
	if !ok {
		role = RoleUser
	}
	*r = role
	return nil
}

// User es un principal registrado en el directorio.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	Role      Role       `json:"role"`
	Avatar    string     `json:"avatar,omitempty"`
	Provider  string     `json:"provider,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// SessionRecord es el registro informativo de un token emitido.
// Nunca participa en la verificacion: un token vale por firma y expiracion.
type SessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
