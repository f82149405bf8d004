package models

import (
	"database/sql"
	"time"
)

// We use 'db' tags for sqlx to automatically map
// the database column names (snake_case) to our Go fields (CamelCase).

// Role is the account role stored on users.role.
type Role string

const (
	RoleUser  Role = "user"
	RoleVip   Role = "vip"
	RoleAdmin Role = "admin"
)

// VipTier identifies a purchasable VIP package tier.
type VipTier string

const (
	VipNone    VipTier = "none"
	VipStarter VipTier = "starter"
	VipPro     VipTier = "pro"
	VipPremium VipTier = "premium"
)

// Platform is a supported social network.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
)

// GrantReason is the closed set of credit-earning actions. Anything
// outside this set must be rejected, not silently accepted.
type GrantReason string

const (
	ReasonAdWatch       GrantReason = "ad_watch"
	ReasonFollowCreator GrantReason = "follow_creator"
	ReasonReferral      GrantReason = "referral"
	ReasonDailyLogin    GrantReason = "daily_login"
)

// User represents a registered account, including its materialized
// credit balance and VIP state.
type User struct {
	ID                 string         `db:"id" json:"id"`
	Username           string         `db:"username" json:"username"`
	Email              string         `db:"email" json:"email"`
	PasswordHash       string         `db:"password_hash" json:"-"`
	SecurityQuestion   string         `db:"security_question" json:"-"`
	SecurityAnswerHash string         `db:"security_answer_hash" json:"-"`
	Role               Role           `db:"role" json:"role"`
	Credits            int            `db:"credits" json:"credits"`
	VipPackage         VipTier        `db:"vip_package" json:"vip_package"`
	VipExpiresAt       *time.Time     `db:"vip_expires_at" json:"vip_expires_at,omitempty"`
	IsFollowingCreator bool           `db:"is_following_creator" json:"is_following_creator"`
	Language           string         `db:"language" json:"language"`
	ReferredBy         sql.NullString `db:"referred_by" json:"-"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// HasActiveVip reports whether the user holds an unexpired VIP package
// at the given instant. An expired package is treated as "none" for
// bonus purposes even though the stored field is not cleared.
func (u *User) HasActiveVip(asOf time.Time) bool {
	return u.VipPackage != "" && u.VipPackage != VipNone &&
		u.VipExpiresAt != nil && asOf.Before(*u.VipExpiresAt)
}

// SocialAccount is a user-linked social profile served by discovery.
// IsFeatured is derived from BoostExpiresAt at read time, never stored.
type SocialAccount struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	Platform       Platform   `db:"platform" json:"platform"`
	Username       string     `db:"username" json:"username"`
	DisplayName    string     `db:"display_name" json:"display_name"`
	Description    string     `db:"description" json:"description,omitempty"`
	ProfileImage   string     `db:"profile_image" json:"profile_image,omitempty"`
	FollowersCount int        `db:"followers_count" json:"followers_count"`
	Category       string     `db:"category" json:"category,omitempty"`
	BoostCount     int        `db:"boost_count" json:"boost_count"`
	BoostExpiresAt *time.Time `db:"boost_expires_at" json:"boost_expires_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`

	// Computed column, not a real table field.
	IsFeatured bool `db:"is_featured" json:"is_featured"`
}

// Featured reports whether the account's boost window covers asOf.
func (s *SocialAccount) Featured(asOf time.Time) bool {
	return s.BoostExpiresAt != nil && asOf.Before(*s.BoostExpiresAt)
}

// Boost is an immutable record of credits converted into a visibility
// window on a social account.
type Boost struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	SocialAccountID string    `db:"social_account_id" json:"social_account_id"`
	CreditsSpent    int       `db:"credits_spent" json:"credits_spent"`
	DurationHours   int       `db:"duration_hours" json:"duration_hours"`
	StartedAt       time.Time `db:"started_at" json:"started_at"`
	ExpiresAt       time.Time `db:"expires_at" json:"expires_at"`
}

// Active reports whether the boost window covers asOf.
func (b *Boost) Active(asOf time.Time) bool {
	return asOf.Before(b.ExpiresAt)
}

// CreditGrant is one row of the append-only reward log. The user's
// balance is the running sum of grants minus boost debits.
type CreditGrant struct {
	ID        string      `db:"id" json:"id"`
	UserID    string      `db:"user_id" json:"user_id"`
	Reason    GrantReason `db:"reason" json:"reason"`
	Amount    int         `db:"amount" json:"amount"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// VipPackage is a purchasable VIP catalog entry.
type VipPackage struct {
	ID           string    `db:"id" json:"id"`
	Tier         VipTier   `db:"tier" json:"tier"`
	Name         string    `db:"name" json:"name"`
	NameEn       string    `db:"name_en" json:"name_en"`
	Price        float64   `db:"price" json:"price"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	Features     string    `db:"features" json:"features"`
	FeaturesEn   string    `db:"features_en" json:"features_en"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PurchaseStatus is the VIP purchase lifecycle state.
type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "pending"
	PurchaseApproved PurchaseStatus = "approved"
	PurchaseRejected PurchaseStatus = "rejected"
)

// PaymentMethod is how a VIP purchase is settled out of band.
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCrypto       PaymentMethod = "crypto"
)

// VipPurchase records a purchase intent. Amount snapshots the package
// price at initiation time; later price changes do not affect it.
type VipPurchase struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"user_id"`
	PackageID     string         `db:"package_id" json:"package_id"`
	Amount        float64        `db:"amount" json:"amount"`
	PaymentMethod PaymentMethod  `db:"payment_method" json:"payment_method"`
	Status        PurchaseStatus `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	ResolvedAt    *time.Time     `db:"resolved_at" json:"resolved_at,omitempty"`
}

// ForumCategory groups forum topics.
type ForumCategory struct {
	ID            string `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	NameEn        string `db:"name_en" json:"name_en"`
	Description   string `db:"description" json:"description"`
	DescriptionEn string `db:"description_en" json:"description_en"`
	Icon          string `db:"icon" json:"icon,omitempty"`
	IsActive      bool   `db:"is_active" json:"is_active"`
}

// ForumTopic is a discussion thread with denormalized counters.
type ForumTopic struct {
	ID           string    `db:"id" json:"id"`
	CategoryID   string    `db:"category_id" json:"category_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Title        string    `db:"title" json:"title"`
	Content      string    `db:"content" json:"content"`
	RepliesCount int       `db:"replies_count" json:"replies_count"`
	ViewsCount   int       `db:"views_count" json:"views_count"`
	IsPinned     bool      `db:"is_pinned" json:"is_pinned"`
	IsLocked     bool      `db:"is_locked" json:"is_locked"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ForumReply is a single reply inside a topic.
type ForumReply struct {
	ID        string    `db:"id" json:"id"`
	TopicID   string    `db:"topic_id" json:"topic_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NotificationType tags a notification for client-side rendering.
type NotificationType string

const (
	NotifVipApproved   NotificationType = "vip_approved"
	NotifBoostActive   NotificationType = "boost_activated"
	NotifBoostExpiring NotificationType = "boost_expiring"
	NotifCreditsEarned NotificationType = "credits_earned"
	NotifForumReply    NotificationType = "forum_reply"
	NotifBroadcast     NotificationType = "broadcast"
)

// Notification is one entry of the per-user feed.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	TitleEn   string           `db:"title_en" json:"title_en"`
	Message   string           `db:"message" json:"message"`
	MessageEn string           `db:"message_en" json:"message_en"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AdminSetting is a key/value pair of the admin-managed configuration
// (bank details, crypto wallet, telegram contact and the like).
type AdminSetting struct {
	ID          string    `db:"id" json:"id"`
	Key         string    `db:"key" json:"key"`
	Value       string    `db:"value" json:"value"`
	Description string    `db:"description" json:"description"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
