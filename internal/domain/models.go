package domain

// Domain contains the account API models exchanged with the server.

// User is the account returned by login and profile updates.
type User struct {
	ID            int    `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`
	ProfileImage  string `json:"profile_image,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

type Country struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	DialCode string `json:"dial_code,omitempty"`
	ISO      string `json:"iso,omitempty"`
}

// Credentials are sent to the login endpoint.
type Credentials struct {
	Email       string
	Password    string
	DeviceToken string
	DeviceType  string
}

// Payload renders the credentials as the login request body.
func (c Credentials) Payload() map[string]any {
	p := map[string]any{
		"email":    c.Email,
		"password": c.Password,
	}
	if c.DeviceToken != "" {
		p["device_token"] = c.DeviceToken
	}
	if c.DeviceType != "" {
		p["device_type"] = c.DeviceType
	}
	return p
}

// ProfileUpdate carries the editable profile fields. Empty fields are not sent.
type ProfileUpdate struct {
	Name        string
	Phone       string
	CountryCode string
}

func (p ProfileUpdate) Payload() map[string]any {
	out := make(map[string]any, 3)
	if p.Name != "" {
		out["name"] = p.Name
	}
	if p.Phone != "" {
		out["phone"] = p.Phone
	}
	if p.CountryCode != "" {
		out["country_code"] = p.CountryCode
	}
	return out
}
