package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VendorStatusPending  = "pending"
	VendorStatusActive   = "active"
	VendorStatusInactive = "inactive"

	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)

// Vendor links a user to their storefront. The counters are a cache refreshed
// by RefreshVendorCounters and are never the source of truth for stats.
type Vendor struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User          primitive.ObjectID `json:"user" bson:"user"`
	BusinessName  string             `json:"businessName" bson:"businessName"`
	Address       string             `json:"address" bson:"address"`
	Bio           string             `json:"bio" bson:"bio"`
	Logo          string             `json:"logo,omitempty" bson:"logo,omitempty"`
	Status        string             `json:"status" bson:"status"`
	JoinedDate    time.Time          `json:"joinedDate" bson:"joinedDate"`
	ProductsCount int                `json:"productsCount" bson:"productsCount"`
	OrdersCount   int                `json:"ordersCount" bson:"ordersCount"`
	TotalSales    int                `json:"totalSales" bson:"totalSales"`
	TotalRevenue  float64            `json:"totalRevenue" bson:"totalRevenue"`
	StatsRefresh  *time.Time         `json:"statsRefreshedAt,omitempty" bson:"statsRefreshedAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type VendorInvitation struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string              `json:"email" bson:"email"`
	Name      string              `json:"name" bson:"name"`
	Phone     string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Token     string              `json:"-" bson:"token"`
	ExpiresAt time.Time           `json:"expiresAt" bson:"expiresAt"`
	Status    string              `json:"status" bson:"status"`
	IssuedBy  *primitive.ObjectID `json:"issuedBy,omitempty" bson:"issuedBy,omitempty"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// VendorDetails is a vendor joined with its user account for admin listings.
type VendorDetails struct {
	Vendor `bson:",inline"`

	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type InviteVendorRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2"`
	Phone string `json:"phone,omitempty"`
}

type CompleteOnboardingRequest struct {
	Token        string `json:"token" validate:"required"`
	Password     string `json:"password" validate:"required,min=8"`
	Phone        string `json:"phone,omitempty"`
	BusinessName string `json:"businessName" validate:"required"`
	Address      string `json:"address,omitempty"`
	Bio          string `json:"bio,omitempty"`
}

type UpdateVendorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active inactive"`
}

// VendorSalesLine is one paid order line attributed to a vendor's product.
type VendorSalesLine struct {
	OrderID  primitive.ObjectID `bson:"orderId"`
	Quantity int                `bson:"quantity"`
	Price    float64            `bson:"price"`
}

type VendorSales struct {
	TotalSales       int     `json:"totalSales"`
	TotalRevenue     float64 `json:"totalRevenue"`
	CommissionEarned float64 `json:"commissionEarned"`
}

type VendorStats struct {
	Products int64       `json:"products"`
	Sales    VendorSales `json:"sales"`
}

// InvitationResult is returned to the admin who sent an invitation.
type InvitationResult struct {
	Invitation     *VendorInvitation `json:"invitation"`
	OnboardingLink string            `json:"onboardingLink"`
	EmailSent      bool              `json:"emailSent"`
}

type InvitationSummary struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type OnboardingResult struct {
	User   User   `json:"user"`
	Vendor Vendor `json:"vendor"`
}
