package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/security"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	invitationTTL  = 7 * 24 * time.Hour
	invitationSize = 32
	qrCodeSize     = 300
)

type VendorStore interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error)
	ListDetails(ctx context.Context, status string) ([]models.VendorDetails, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Vendor, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	CreateInvitation(ctx context.Context, inv *models.VendorInvitation) error
	FindInvitationByID(ctx context.Context, id primitive.ObjectID) (*models.VendorInvitation, error)
	FindPendingInvitation(ctx context.Context, email string, now time.Time) (*models.VendorInvitation, error)
	FindInvitationByToken(ctx context.Context, token string, now time.Time) (*models.VendorInvitation, error)
	AcceptInvitation(ctx context.Context, id primitive.ObjectID) (bool, error)
	ExpireInvitations(ctx context.Context, now time.Time) (int64, error)
}

// UserAccountStore is the user persistence that onboarding and auth need.
type UserAccountStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
	UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type VendorService struct {
	vendors     VendorStore
	users       UserAccountStore
	mailer      Mailer
	frontendURL string
	now         func() time.Time
}

func NewVendorService(vendors VendorStore, users UserAccountStore, mailer Mailer, frontendURL string) *VendorService {
	return &VendorService{
		vendors:     vendors,
		users:       users,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

func (s *VendorService) onboardingLink(token string) string {
	return s.frontendURL + "/vendor/onboarding?token=" + url.QueryEscape(token)
}

// InviteVendor records an invitation and emails its onboarding link. A failed
// email does not undo the invitation; the admin can share the link or QR code.
func (s *VendorService) InviteVendor(ctx context.Context, adminID primitive.ObjectID, req models.InviteVendorRequest) (*models.InvitationResult, error) {
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return nil, utils.BadRequest("Invalid email address")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, utils.BadRequest("A user with this email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	now := s.now()
	if _, err := s.vendors.FindPendingInvitation(ctx, email, now); err == nil {
		return nil, utils.BadRequest("An invitation has already been sent to this email")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("find invitation: %w", err)
	}

	token, err := security.GenerateToken(invitationSize)
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}

	issuer := adminID
	inv := &models.VendorInvitation{
		Email:     email,
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Token:     token,
		ExpiresAt: now.Add(invitationTTL),
		Status:    models.InvitationPending,
		IssuedBy:  &issuer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.vendors.CreateInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	link := s.onboardingLink(token)
	sent := true
	if err := s.mailer.Send(email, "You're invited to sell on our marketplace", vendorInvitationEmail(inv.Name, link)); err != nil {
		log.Printf("Error sending vendor invitation to %s: %v", email, err)
		sent = false
	}

	return &models.InvitationResult{Invitation: inv, OnboardingLink: link, EmailSent: sent}, nil
}

// InvitationQRCode renders the onboarding link of a pending invitation as a PNG.
func (s *VendorService) InvitationQRCode(ctx context.Context, id primitive.ObjectID) ([]byte, error) {
	inv, err := s.vendors.FindInvitationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Invitation not found")
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	if inv.Status != models.InvitationPending || !inv.ExpiresAt.After(s.now()) {
		return nil, utils.BadRequest("Invitation is no longer valid")
	}

	return qrPNG(s.onboardingLink(inv.Token))
}

func qrPNG(content string) ([]byte, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	code, err = barcode.Scale(code, qrCodeSize, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("scale qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *VendorService) VerifyInvitation(ctx context.Context, token string) (*models.InvitationSummary, error) {
	inv, err := s.validInvitation(ctx, token)
	if err != nil {
		return nil, err
	}
	return &models.InvitationSummary{Email: inv.Email, Name: inv.Name, Phone: inv.Phone}, nil
}

func (s *VendorService) validInvitation(ctx context.Context, token string) (*models.VendorInvitation, error) {
	if strings.TrimSpace(token) == "" {
		return nil, utils.BadRequest("Invalid or expired invitation token")
	}
	inv, err := s.vendors.FindInvitationByToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.BadRequest("Invalid or expired invitation token")
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	return inv, nil
}

// CompleteOnboarding turns an invitation into a vendor account. The
// invitation is claimed last; losing that race rolls the new records back.
func (s *VendorService) CompleteOnboarding(ctx context.Context, req models.CompleteOnboardingRequest) (*models.OnboardingResult, error) {
	inv, err := s.validInvitation(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, utils.BadRequest("Password must be at least 8 characters")
	}

	phone := inv.Phone
	if strings.TrimSpace(req.Phone) != "" {
		if phone, err = utils.SanitizePhone(req.Phone); err != nil {
			return nil, utils.BadRequest("Invalid phone number")
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Name:      inv.Name,
		Email:     inv.Email,
		Password:  string(hashed),
		Role:      models.RoleVendor,
		Phone:     phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, utils.BadRequest("A user with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	vendor := &models.Vendor{
		User:         user.ID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		Address:      req.Address,
		Bio:          req.Bio,
		Status:       models.VendorStatusActive,
		JoinedDate:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.vendors.Create(ctx, vendor); err != nil {
		s.rollbackUser(ctx, user.ID)
		return nil, fmt.Errorf("create vendor: %w", err)
	}

	accepted, err := s.vendors.AcceptInvitation(ctx, inv.ID)
	if err != nil || !accepted {
		s.rollbackVendor(ctx, vendor.ID)
		s.rollbackUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("accept invitation: %w", err)
		}
		return nil, utils.BadRequest("Invalid or expired invitation token")
	}

	log.Printf("Vendor onboarded: %s (%s)", vendor.BusinessName, user.Email)
	return &models.OnboardingResult{User: *user, Vendor: *vendor}, nil
}

func (s *VendorService) rollbackUser(ctx context.Context, id primitive.ObjectID) {
	if err := s.users.Delete(ctx, id); err != nil {
		log.Printf("Error rolling back user %s: %v", id.Hex(), err)
	}
}

func (s *VendorService) rollbackVendor(ctx context.Context, id primitive.ObjectID) {
	if err := s.vendors.Delete(ctx, id); err != nil {
		log.Printf("Error rolling back vendor %s: %v", id.Hex(), err)
	}
}

func (s *VendorService) ListVendors(ctx context.Context, status string) ([]models.VendorDetails, error) {
	if status != "" && !validVendorStatus(status) {
		return nil, utils.BadRequest("Invalid vendor status")
	}
	vendors, err := s.vendors.ListDetails(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, nil
}

func (s *VendorService) GetVendor(ctx context.Context, id primitive.ObjectID) (*models.VendorDetails, error) {
	vendor, err := s.findVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &models.VendorDetails{Vendor: *vendor}
	user, err := s.users.FindByID(ctx, vendor.User)
	switch {
	case err == nil:
		details.Name, details.Email, details.Phone = user.Name, user.Email, user.Phone
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("find vendor user: %w", err)
	}
	return details, nil
}

func (s *VendorService) UpdateVendorStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Vendor, error) {
	if !validVendorStatus(status) {
		return nil, utils.BadRequest("Invalid vendor status")
	}
	vendor, err := s.vendors.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Vendor not found")
		}
		return nil, fmt.Errorf("update vendor status: %w", err)
	}

	s.emailVendorUser(ctx, vendor.User, "Your vendor account status has changed", func(name string) string {
		return vendorStatusEmail(name, status)
	})
	return vendor, nil
}

// DeleteVendor removes the storefront and demotes its owner to a plain user.
// Products stay in place for order history.
func (s *VendorService) DeleteVendor(ctx context.Context, id primitive.ObjectID) error {
	vendor, err := s.findVendor(ctx, id)
	if err != nil {
		return err
	}
	if err := s.vendors.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return utils.NotFound("Vendor not found")
		}
		return fmt.Errorf("delete vendor: %w", err)
	}
	if err := s.users.UpdateRole(ctx, vendor.User, models.RoleUser); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		log.Printf("Error resetting role for user %s: %v", vendor.User.Hex(), err)
	}

	s.emailVendorUser(ctx, vendor.User, "Your vendor account has been removed", vendorRemovedEmail)
	return nil
}

func (s *VendorService) emailVendorUser(ctx context.Context, userID primitive.ObjectID, subject string, body func(name string) string) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		log.Printf("Error loading vendor user %s for email: %v", userID.Hex(), err)
		return
	}
	if err := s.mailer.Send(user.Email, subject, body(user.Name)); err != nil {
		log.Printf("Error emailing vendor %s: %v", user.Email, err)
	}
}

// ExpireInvitations marks pending invitations past their expiry as expired.
func (s *VendorService) ExpireInvitations(ctx context.Context) (int64, error) {
	n, err := s.vendors.ExpireInvitations(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire invitations: %w", err)
	}
	return n, nil
}

func (s *VendorService) findVendor(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	vendor, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NotFound("Vendor not found")
		}
		return nil, fmt.Errorf("find vendor: %w", err)
	}
	return vendor, nil
}

func validVendorStatus(status string) bool {
	switch status {
	case models.VendorStatusPending, models.VendorStatusActive, models.VendorStatusInactive:
		return true
	}
	return false
}
