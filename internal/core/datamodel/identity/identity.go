package identity

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	FirstName    string    `gorm:"column:first_name;not null"`
	LastName     string    `gorm:"column:last_name"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// RoleType categorises roles. Exactly one seeded type carries GrantsGlobalAdmin.
type RoleType struct {
	ID                int64  `gorm:"primaryKey"`
	Name              string `gorm:"column:name;uniqueIndex;not null"`
	GrantsGlobalAdmin bool   `gorm:"column:grants_global_admin;default:false"`
}

func (RoleType) TableName() string { return "role_types" }

type Role struct {
	ID         int64     `gorm:"primaryKey"`
	Name       string    `gorm:"column:name;uniqueIndex;not null"`
	RoleTypeID int64     `gorm:"column:role_type_id;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Role) TableName() string { return "roles" }

type UserRole struct {
	UserID    int64     `gorm:"column:user_id;primaryKey"`
	RoleID    int64     `gorm:"column:role_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UserRole) TableName() string { return "user_roles" }

// Workstream is matched on Code, never on Name.
type Workstream struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Workstream) TableName() string { return "workstreams" }

type PermissionType struct {
	ID    int64  `gorm:"primaryKey"`
	Name  string `gorm:"column:name;uniqueIndex;not null"`
	Level int    `gorm:"column:level;not null"`
}

func (PermissionType) TableName() string { return "permission_types" }

type WorkstreamAccess struct {
	ID               int64     `gorm:"primaryKey"`
	UserID           int64     `gorm:"column:user_id;not null;uniqueIndex:idx_workstream_access_user_workstream"`
	WorkstreamID     int64     `gorm:"column:workstream_id;not null;uniqueIndex:idx_workstream_access_user_workstream"`
	PermissionTypeID int64     `gorm:"column:permission_type_id;not null"`
	GrantedBy        *int64    `gorm:"column:granted_by"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkstreamAccess) TableName() string { return "workstream_access" }
