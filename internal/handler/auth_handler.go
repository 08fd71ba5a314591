/*
Package handler provides HTTP handler functions for account signup, login, and
profile management.
*/
package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"chatty/internal/app/message"
	"chatty/internal/app/user"
	"chatty/internal/pkg/auth/jwt"
	"chatty/internal/pkg/errs"
	"chatty/internal/pkg/logx"
	"chatty/internal/pkg/randx"
	"chatty/internal/pkg/req"
	"chatty/internal/pkg/resp"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 50
)

type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup processes the request to create a new account and issues a JWT on success.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SignupInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FullName == "" || input.Email == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		if _, err := mail.ParseAddress(input.Email); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < MinPasswordLength || passwordLen > MaxPasswordLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword, MinPasswordLength))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		account, err := deps.Users.Create(r.Context(), input.FullName, input.Email, string(hashedPassword))
		if err != nil {
			if errors.Is(err, user.ErrEmailTaken) {
				logx.Warn("signup conflict: email already registered", "email", input.Email)
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		token, err := jwt.GenerateToken(account.ID, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "failed to generate token after signup")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondCreated(w, r, map[string]any{
			"token": token,
			"user":  account,
		})
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies account credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Email == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		account, err := deps.Users.GetByEmail(r.Context(), input.Email)
		if err != nil {
			logx.Warn("login: account fetch failed", "email", input.Email, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "email", input.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		token, err := jwt.GenerateToken(account.ID, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  account,
		})
	}
}

// HandleLogout acknowledges the logout. Identity is a stateless bearer token,
// so the server keeps nothing to invalidate; the client discards its copy.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"message": "Logged out successfully.",
		})
	}
}

// HandleCheckAuth returns the authenticated account's current record, letting
// clients rehydrate their session on page load.
func HandleCheckAuth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Users.GetByID(r.Context(), identity.ID)
		if err != nil {
			logx.Warn("check_auth: account not found", "id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": account})
	}
}

type UpdateProfileInput struct {
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

// HandleUpdateProfile applies changes to the authenticated account's display
// name and avatar. ProfilePic, when present, is base64-encoded image content
// that is stored on the media host first; only the durable URL is persisted.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindUploadJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FullName == "" && input.ProfilePic == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var fullName, profilePicURL *string
		if input.FullName != "" {
			fullName = &input.FullName
		}

		if input.ProfilePic != "" {
			data, err := base64.StdEncoding.DecodeString(message.StripDataURI(input.ProfilePic))
			if err != nil || len(data) == 0 {
				resp.RespondError(w, r, errs.NewError(errs.ErrAttachmentInvalid))
				return
			}
			if len(data) > message.MaxAttachmentSize {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileSizeTooLarge))
				return
			}

			contentType := http.DetectContentType(data)
			key := randx.AvatarKey(avatarExtension(contentType))

			avatarURL, err := deps.Media.Upload(r.Context(), key, contentType, data)
			if err != nil {
				logx.Error(err, "update_profile: avatar upload failed", "user_id", identity.ID)
				resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
				return
			}

			profilePicURL = &avatarURL
		}

		account, err := deps.Users.UpdateProfile(r.Context(), identity.ID, fullName, profilePicURL)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}

			logx.Error(err, "update_profile: failed to persist profile", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": account})
	}
}

// avatarObjectKey extracts the media object key from a stored avatar URL, or
// "" when the URL does not point at an avatar object.
func avatarObjectKey(avatarURL string) string {
	idx := strings.Index(avatarURL, "/avatars/")
	if idx < 0 {
		return ""
	}
	return avatarURL[idx+1:]
}

func avatarExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

type ResetPasswordInput struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

// HandleResetPassword replaces the password for the account registered under
// the given email.
func HandleResetPassword(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ResetPasswordInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Email == "" || input.NewPassword == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		passwordLen := utf8.RuneCountInString(input.NewPassword)
		if passwordLen < MinPasswordLength || passwordLen > MaxPasswordLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword, MinPasswordLength))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		if err := deps.Users.UpdatePasswordByEmail(r.Context(), input.Email, string(hashedPassword)); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}

			logx.Error(err, "reset_password: failed to update password", "email", input.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{
			"message": "Password reset successfully.",
		})
	}
}

// HandleDeleteAccount removes the authenticated account. The storage layer's
// cascade rules take the account's chat requests and messages with it, and the
// avatar object is removed from the media host.
func HandleDeleteAccount(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Users.GetByID(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		if key := avatarObjectKey(account.ProfilePic); key != "" {
			if err := deps.Media.Delete(r.Context(), key); err != nil {
				// The orphaned object costs storage, not correctness.
				logx.Warn("delete_account: avatar cleanup failed", "user_id", identity.ID, "key", key)
			}
		}

		if err := deps.Users.Delete(r.Context(), identity.ID); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}

			logx.Error(err, "delete_account: failed to delete account", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		logx.Info("Account deleted", "user_id", identity.ID)

		resp.RespondSuccess(w, r, map[string]string{
			"message": "Account deleted successfully.",
		})
	}
}
