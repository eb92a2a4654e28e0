package endpoint

import "net/http"

// Built-in endpoints of the account API.
var (
	Login          = Endpoint{Name: "login", Path: "/api/Login", Method: http.MethodPost}
	ForgotPassword = Endpoint{Name: "forgot_password", Path: "/api/ForgetPassword", Method: http.MethodPost}
	ValidateOTP    = Endpoint{Name: "validate_otp", Path: "/api/ValidateOTP", Method: http.MethodPost}
	Logout         = Endpoint{Name: "logout", Path: "/api/LogOut", Method: http.MethodPost, RequiresAuth: true}
	VerifyPhone    = Endpoint{Name: "verify_phone", Path: "/verify_phone", Method: http.MethodPost}
	UploadPhoto    = Endpoint{Name: "upload_photo", Path: "/api/UploadImage", Method: http.MethodPost, RequiresAuth: true}
	ValidateEmail  = Endpoint{Name: "validate_email", Path: "/api/ValidateEmail", Method: http.MethodPost}
	Countries      = Endpoint{Name: "countries", Path: "/api/Country", Method: http.MethodGet}

	resetPassword     = Endpoint{Name: "reset_password", Path: "/api/ResetPassword/{otp}", Method: http.MethodPost}
	changePassword    = Endpoint{Name: "change_password", Path: "/api/ChangePassword?id={user_id}", Method: http.MethodPost, RequiresAuth: true}
	updateProfile     = Endpoint{Name: "update_profile", Path: "/api/UpdateProfile?id={user_id}", Method: http.MethodPost, RequiresAuth: true}
	emailVerification = Endpoint{Name: "email_verification", Path: "/api/EmailVerification/{user_id}", Method: http.MethodGet}
	changeEmail       = Endpoint{Name: "change_email", Path: "/api/ChangeEmail?OTP={otp}", Method: http.MethodPost, RequiresAuth: true}
)

// ResetPassword resets a password with the emailed one-time code.
func ResetPassword(otp string) Endpoint {
	return resetPassword.With(map[string]any{"otp": otp})
}

// ChangePassword changes the password of userID.
func ChangePassword(userID int) Endpoint {
	return changePassword.With(map[string]any{"user_id": userID})
}

// UpdateProfile updates the profile of userID.
func UpdateProfile(userID int) Endpoint {
	return updateProfile.With(map[string]any{"user_id": userID})
}

// EmailVerification fetches the email verification state of userID.
func EmailVerification(userID int) Endpoint {
	return emailVerification.With(map[string]any{"user_id": userID})
}

// ChangeEmail confirms an email change with its one-time code.
func ChangeEmail(otp string) Endpoint {
	return changeEmail.With(map[string]any{"otp": otp})
}

// Builtin returns the unresolved templates of every built-in endpoint.
func Builtin() []Endpoint {
	return []Endpoint{
		Login, ForgotPassword, ValidateOTP, Logout, VerifyPhone, UploadPhoto, ValidateEmail, Countries,
		resetPassword, changePassword, updateProfile, emailVerification, changeEmail,
	}
}
