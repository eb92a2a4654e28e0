package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/samvad-api-client/internal/domain"
	"github.com/samvad-hq/samvad-api-client/pkg/apiclient"
	"github.com/samvad-hq/samvad-api-client/pkg/endpoint"
	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
)

// Login signs in and clears a pending relogin request on success. The session
// device token is sent when the credentials carry none.
func (a *App) Login(ctx context.Context, creds domain.Credentials) (domain.User, error) {
	if creds.DeviceToken == "" {
		creds.DeviceToken = a.session.DeviceToken()
	}
	res, err := apiclient.Call[domain.User](ctx, a.client, endpoint.Login, creds.Payload())
	if err != nil {
		return domain.User{}, err
	}
	if err := a.session.ClearRelogin(ctx); err != nil {
		a.log.ErrorObj("clear relogin flag failed", "error", err)
	}
	return res.Value, nil
}

// Logout ends the server session and drops the local token.
func (a *App) Logout(ctx context.Context) error {
	if _, err := apiclient.Call[json.RawMessage](ctx, a.client, endpoint.Logout, nil); err != nil {
		return err
	}
	return a.session.Clear(ctx)
}

// ForgotPassword asks the server to email a one-time code.
func (a *App) ForgotPassword(ctx context.Context, email string) error {
	_, err := apiclient.Call[json.RawMessage](ctx, a.client, endpoint.ForgotPassword, apiclient.Payload{"email": email})
	return err
}

func (a *App) ValidateOTP(ctx context.Context, email, otp string) error {
	_, err := apiclient.Call[json.RawMessage](ctx, a.client, endpoint.ValidateOTP, apiclient.Payload{"email": email, "otp": otp})
	return err
}

func (a *App) ResetPassword(ctx context.Context, otp, password string) error {
	_, err := apiclient.Call[json.RawMessage](ctx, a.client, endpoint.ResetPassword(otp), apiclient.Payload{"password": password})
	return err
}

func (a *App) UpdateProfile(ctx context.Context, userID int, update domain.ProfileUpdate) (domain.User, error) {
	res, err := apiclient.Call[domain.User](ctx, a.client, endpoint.UpdateProfile(userID), update.Payload())
	return res.Value, err
}

func (a *App) Countries(ctx context.Context) ([]domain.Country, error) {
	res, err := apiclient.Call[[]domain.Country](ctx, a.client, endpoint.Countries, nil)
	return res.Value, err
}

// UploadPhoto sends a JPEG profile image for userID.
func (a *App) UploadPhoto(ctx context.Context, userID int, jpeg []byte, progress func(httpclient.Progress)) (map[string]any, error) {
	res, err := apiclient.Upload[map[string]any](ctx, a.client, endpoint.UploadPhoto,
		apiclient.Payload{"user_id": userID},
		[]httpclient.Part{apiclient.ImagePart("image", jpeg)},
		apiclient.WithProgress(progress),
	)
	return res.Value, err
}

// Invoke calls a catalog endpoint by name. params fill {placeholders} of its path.
// The returned data is nil for acknowledgements.
func (a *App) Invoke(ctx context.Context, name string, params map[string]any, payload apiclient.Payload, opts ...apiclient.CallOption) (json.RawMessage, error) {
	ep, err := a.resolve(name, params)
	if err != nil {
		return nil, err
	}
	res, err := apiclient.Call[json.RawMessage](ctx, a.client, ep, payload, opts...)
	if err != nil {
		return nil, err
	}
	if !res.HasData {
		return nil, nil
	}
	return res.Value, nil
}

// InvokeRaw is Invoke for endpoints that answer without the envelope.
func (a *App) InvokeRaw(ctx context.Context, name string, params map[string]any, payload apiclient.Payload, opts ...apiclient.CallOption) (json.RawMessage, error) {
	ep, err := a.resolve(name, params)
	if err != nil {
		return nil, err
	}
	return apiclient.CallRaw[json.RawMessage](ctx, a.client, ep, payload, opts...)
}

// UploadFiles sends payload and the files at paths as a multipart request.
func (a *App) UploadFiles(ctx context.Context, name string, params map[string]any, payload apiclient.Payload, field string, paths []string, opts ...apiclient.CallOption) (json.RawMessage, error) {
	ep, err := a.resolve(name, params)
	if err != nil {
		return nil, err
	}
	parts := make([]httpclient.Part, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, apiclient.FilePart(field, p))
	}
	res, err := apiclient.Upload[json.RawMessage](ctx, a.client, ep, payload, parts, opts...)
	if err != nil {
		return nil, err
	}
	if !res.HasData {
		return nil, nil
	}
	return res.Value, nil
}

func (a *App) resolve(name string, params map[string]any) (endpoint.Endpoint, error) {
	ep, ok := a.catalog.ByName(name)
	if !ok {
		return endpoint.Endpoint{}, fmt.Errorf("unknown endpoint %q", name)
	}
	ep = ep.With(params)
	if missing := ep.Placeholders(); len(missing) > 0 {
		return endpoint.Endpoint{}, fmt.Errorf("endpoint %q: missing params %v", name, missing)
	}
	return ep, nil
}
