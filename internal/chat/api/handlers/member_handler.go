package handlers

import (
	"chat_backend_service/internal/chat/app"
	errprocess "chat_backend_service/pkg/err"
	t_token "chat_backend_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler definition account endpoints
type MemberHandler struct {
	MemberUC *app.MemberUseCase
}

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Register create a new account
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	user, err := h.MemberUC.Register(c.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login check credentials and issue a token pair
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	user, pair, err := h.MemberUC.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{
		"user":   user,
		"tokens": pair,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotate the token pair
func (h *MemberHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	pair, err := h.MemberUC.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, pair)
}

// CheckToken report whether the access token in the Authorization header
// is still usable, so a client knows when to refresh
func (h *MemberHandler) CheckToken(c *fiber.Ctx) error {
	valid, err := t_token.CheckJWTNotExpire(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return respondErr(c, errprocess.New(errprocess.KindForbidden, "invalid token"))
	}
	return respondOK(c, fiber.Map{"valid": valid})
}

// Logout revoke the active refresh token
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	userID, _ := principal(c)
	if err := h.MemberUC.Logout(c.Context(), userID); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, fiber.Map{"logged_out": true})
}

// Me load the authenticated account
func (h *MemberHandler) Me(c *fiber.Ctx) error {
	userID, _ := principal(c)
	user, err := h.MemberUC.GetProfile(c.Context(), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, user)
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// UpdateProfile change the requester's display fields
func (h *MemberHandler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "invalid request body"))
	}

	userID, _ := principal(c)
	user, err := h.MemberUC.UpdateProfile(c.Context(), userID, req.DisplayName, req.Avatar)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, user)
}

// Friends list the requester's friends with their profiles
func (h *MemberHandler) Friends(c *fiber.Ctx) error {
	userID, _ := principal(c)
	friends, err := h.MemberUC.ListFriends(c.Context(), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, friends)
}

// SearchUser find an account by the public facing id
func (h *MemberHandler) SearchUser(c *fiber.Ctx) error {
	discoverID := c.Params("discover_id")
	summary, err := h.MemberUC.SearchUser(c.Context(), discoverID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, summary)
}
