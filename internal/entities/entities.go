package entities

import (
	"time"
)

type UserRole string

const (
	RoleReader      UserRole = "reader"
	RoleModerator   UserRole = "moderator"
	RoleAdmin       UserRole = "admin"
	RoleSystemAdmin UserRole = "system_admin"
)

type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleOwner  MemberRole = "owner"
)

type ClubBookStatus string

const (
	ClubBookPlanned   ClubBookStatus = "planned"
	ClubBookCurrent   ClubBookStatus = "current"
	ClubBookCompleted ClubBookStatus = "completed"
	ClubBookVoted     ClubBookStatus = "voted"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressReading    ProgressStatus = "reading"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressAbandoned  ProgressStatus = "abandoned"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	Bio          string    `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL    string    `gorm:"size:500" json:"avatar_url,omitempty"`
	Phone        *string   `gorm:"uniqueIndex;size:20" json:"phone,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Role         UserRole  `gorm:"size:20;default:'reader'" json:"role"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Book is keyed by the external catalog (Google Books) volume identifier.
// Attributes may be refreshed from the catalog; the identity never changes.
type Book struct {
	ID            string    `gorm:"primaryKey;size:255" json:"id"`
	Title         string    `gorm:"index;size:500" json:"title"`
	Author        string    `gorm:"size:500" json:"author"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	CoverImageURL string    `gorm:"size:1000" json:"cover_image_url,omitempty"`
	ISBN          *string   `gorm:"uniqueIndex;size:20" json:"isbn,omitempty"`
	PublishedDate string    `gorm:"size:50" json:"published_date,omitempty"`
	PageCount     *int      `json:"page_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Club struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:255" json:"name"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	CoverImageURL string    `gorm:"size:1000" json:"cover_image_url,omitempty"`
	IsPrivate     bool      `gorm:"default:false" json:"is_private"`
	OwnerID       uint      `gorm:"index" json:"owner_id"`
	MaxMembers    int       `gorm:"default:50" json:"max_members"`
	Owner         User      `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ClubMember struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	UserID   uint       `gorm:"index;uniqueIndex:uq_user_club" json:"user_id"`
	ClubID   uint       `gorm:"index;uniqueIndex:uq_user_club" json:"club_id"`
	Role     MemberRole `gorm:"size:20;default:'member'" json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
	User     User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Club     Club       `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *ClubMember) CanManageClub() bool {
	return m.Role == MemberRoleOwner || m.Role == MemberRoleAdmin
}

type ClubBook struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ClubID      uint           `gorm:"index;uniqueIndex:uq_club_book" json:"club_id"`
	BookID      string         `gorm:"index;uniqueIndex:uq_club_book;size:255" json:"book_id"`
	Status      ClubBookStatus `gorm:"size:20;default:'planned'" json:"status"`
	AddedAt     time.Time      `json:"added_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Club        Club           `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"-"`
	Book        Book           `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
}

// ReadingProgress is the single per-user-per-book record of reading state,
// updated in place as the user reads. ClubID is set when progress is tracked
// as part of a club challenge; deleting the club only clears the reference.
type ReadingProgress struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"index;uniqueIndex:uq_user_book_progress" json:"user_id"`
	BookID             string         `gorm:"index;uniqueIndex:uq_user_book_progress;size:255" json:"book_id"`
	ClubID             *uint          `gorm:"index" json:"club_id,omitempty"`
	Status             ProgressStatus `gorm:"size:20;default:'not_started'" json:"status"`
	CurrentPage        int            `gorm:"default:0" json:"current_page"`
	ProgressPercentage float64        `gorm:"default:0" json:"progress_percentage"`
	Rating             *int           `json:"rating,omitempty"`
	Review             *string        `gorm:"size:2000" json:"review,omitempty"`
	StartedAt          *time.Time     `json:"started_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	User               User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book               Book           `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
	Club               *Club          `gorm:"foreignKey:ClubID;constraint:OnDelete:SET NULL" json:"-"`
}

type Discussion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClubID    uint      `gorm:"index" json:"club_id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	BookID    string    `gorm:"index;size:255" json:"book_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	Title     string    `gorm:"size:300" json:"title,omitempty"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Club      Club        `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"-"`
	User      User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Book      Book        `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	Parent    *Discussion `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d *Discussion) IsTopLevel() bool {
	return d.ParentID == nil
}

func (User) TableName() string            { return "users" }
func (Book) TableName() string            { return "books" }
func (Club) TableName() string            { return "clubs" }
func (ClubMember) TableName() string      { return "club_members" }
func (ClubBook) TableName() string        { return "club_books" }
func (ReadingProgress) TableName() string { return "reading_progress" }
func (Discussion) TableName() string      { return "discussions" }
