package controllers

import (
	"context"
	"net/http"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VendorManager interface {
	InviteVendor(ctx context.Context, adminID primitive.ObjectID, req models.InviteVendorRequest) (*models.InvitationResult, error)
	InvitationQRCode(ctx context.Context, id primitive.ObjectID) ([]byte, error)
	VerifyInvitation(ctx context.Context, token string) (*models.InvitationSummary, error)
	CompleteOnboarding(ctx context.Context, req models.CompleteOnboardingRequest) (*models.OnboardingResult, error)
	ListVendors(ctx context.Context, status string) ([]models.VendorDetails, error)
	GetVendor(ctx context.Context, id primitive.ObjectID) (*models.VendorDetails, error)
	UpdateVendorStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Vendor, error)
	DeleteVendor(ctx context.Context, id primitive.ObjectID) error
}

type VendorStatsReader interface {
	GetVendorStats(ctx context.Context, vendorUserID primitive.ObjectID) (models.VendorStats, error)
	GetVendorStatsByVendorID(ctx context.Context, vendorID primitive.ObjectID) (models.VendorStats, error)
}

type TokenIssuer interface {
	IssueToken(user *models.User) (*models.AuthResponse, error)
}

type VendorController struct {
	vendors VendorManager
	stats   VendorStatsReader
	tokens  TokenIssuer
}

func NewVendorController(vendors VendorManager, stats VendorStatsReader, tokens TokenIssuer) *VendorController {
	return &VendorController{vendors: vendors, stats: stats, tokens: tokens}
}

func (vc *VendorController) InviteVendor(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req models.InviteVendorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	result, err := vc.vendors.InviteVendor(c.Request().Context(), actor.ID, req)
	if err != nil {
		return respondError(c, err)
	}

	message := "Vendor invitation sent successfully"
	if !result.EmailSent {
		message = "Invitation created but the email could not be sent; share the onboarding link manually"
	}
	return respond(c, http.StatusCreated, message, result)
}

// GetInvitationQRCode returns the onboarding link as a PNG.
func (vc *VendorController) GetInvitationQRCode(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid invitation id")
	if err != nil {
		return respondError(c, err)
	}
	png, err := vc.vendors.InvitationQRCode(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (vc *VendorController) VerifyInvitation(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return respondError(c, utils.BadRequest("Invitation token is required"))
	}
	summary, err := vc.vendors.VerifyInvitation(c.Request().Context(), token)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Invitation is valid", summary)
}

// CompleteOnboarding creates the vendor account and signs it in.
func (vc *VendorController) CompleteOnboarding(c echo.Context) error {
	var req models.CompleteOnboardingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	result, err := vc.vendors.CompleteOnboarding(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	auth, err := vc.tokens.IssueToken(&result.User)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Vendor onboarding completed successfully", map[string]interface{}{
		"token":  auth.Token,
		"user":   auth.User,
		"vendor": result.Vendor,
	})
}

func (vc *VendorController) GetVendors(c echo.Context) error {
	vendors, err := vc.vendors.ListVendors(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Vendors retrieved successfully", vendors)
}

func (vc *VendorController) GetVendor(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid vendor id")
	if err != nil {
		return respondError(c, err)
	}
	vendor, err := vc.vendors.GetVendor(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Vendor retrieved successfully", vendor)
}

func (vc *VendorController) UpdateVendorStatus(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid vendor id")
	if err != nil {
		return respondError(c, err)
	}
	var req models.UpdateVendorStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	vendor, err := vc.vendors.UpdateVendorStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Vendor status updated successfully", vendor)
}

func (vc *VendorController) DeleteVendor(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid vendor id")
	if err != nil {
		return respondError(c, err)
	}
	if err := vc.vendors.DeleteVendor(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Vendor deleted successfully", nil)
}

// GetVendorStats is the admin view of any vendor's sales and commission.
func (vc *VendorController) GetVendorStats(c echo.Context) error {
	id, err := paramID(c, "id", "Invalid vendor id")
	if err != nil {
		return respondError(c, err)
	}
	stats, err := vc.stats.GetVendorStatsByVendorID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Vendor stats retrieved successfully", stats)
}

// GetMyStats serves the signed-in vendor's own numbers.
func (vc *VendorController) GetMyStats(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return respondError(c, err)
	}
	stats, err := vc.stats.GetVendorStats(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Vendor stats retrieved successfully", stats)
}
