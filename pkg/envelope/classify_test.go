package envelope

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/samvad-api-client/pkg/apierror"
	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
)

const testURL = "https://api.example.com/api/Login"

type user struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func respond(status int, body string) *httpclient.StaticResponse {
	return &httpclient.StaticResponse{Status: status, Payload: []byte(body)}
}

func TestClassifyObjectData(t *testing.T) {
	out := Classify(respond(200, `{"status":200,"data":{"id":7,"name":"Asha","email":"a@x.io"}}`), testURL, ModeEnvelope)
	require.Equal(t, Value, out.Kind)

	got, err := Decode[user](out.Data, testURL)
	require.NoError(t, err)
	assert.Equal(t, user{ID: 7, Name: "Asha", Email: "a@x.io"}, got)
}

func TestClassifyArrayData(t *testing.T) {
	out := Classify(respond(200, `{"status":200,"data":[{"id":1},{"id":2}]}`), testURL, ModeEnvelope)
	require.Equal(t, Value, out.Kind)

	got, err := Decode[[]user](out.Data, testURL)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestClassifyScalarAndNullDataAcknowledge(t *testing.T) {
	for _, body := range []string{
		`{"status":200,"data":null}`,
		`{"status":200,"data":"ok"}`,
		`{"status":200,"data":true}`,
		`{"status":200,"data":12}`,
	} {
		out := Classify(respond(200, body), testURL, ModeEnvelope)
		assert.Equal(t, Ack, out.Kind, body)
		assert.Nil(t, out.Err, body)
	}
}

func TestClassifyMissingDataIsFailure(t *testing.T) {
	out := Classify(respond(200, `{"status":200,"message":"Profile incomplete"}`), testURL, ModeEnvelope)
	require.Equal(t, Failure, out.Kind)
	assert.Equal(t, apierror.KindEmptyResponse, out.Err.Kind)
	assert.Equal(t, "Profile incomplete", out.Err.Description)

	out = Classify(respond(200, `{"status":200}`), testURL, ModeEnvelope)
	require.Equal(t, Failure, out.Kind)
	assert.Equal(t, apierror.MsgSomethingWrong, out.Err.Description)
}

func TestClassifyNonSuccessStatus(t *testing.T) {
	out := Classify(respond(200, `{"status":400,"message":"Invalid OTP"}`), testURL, ModeEnvelope)
	require.Equal(t, Failure, out.Kind)
	assert.Equal(t, apierror.KindApplication, out.Err.Kind)
	assert.Equal(t, "Invalid OTP", out.Err.Description)
	assert.Equal(t, http.StatusOK, out.Err.Code)
	assert.Equal(t, testURL, out.Err.URL)

	out = Classify(respond(422, `{"status":422,"message":""}`), testURL, ModeEnvelope)
	assert.Equal(t, apierror.MsgSomethingWrong, out.Err.Description)
	assert.Equal(t, 422, out.Err.Code)
}

func TestClassifyHTTP401FlagsRelogin(t *testing.T) {
	out := Classify(respond(http.StatusUnauthorized, `{"status":401}`), testURL, ModeEnvelope)
	require.Equal(t, Failure, out.Kind)
	assert.True(t, out.Relogin)
	assert.Equal(t, apierror.TitleAuthRequired, out.Err.Title)
	assert.Equal(t, apierror.MsgAuthRequired, out.Err.Description)
}

func TestClassifyHTTP503SchedulesMaintenance(t *testing.T) {
	out := Classify(respond(http.StatusServiceUnavailable, ``), testURL, ModeUpload)
	require.Equal(t, Failure, out.Kind)
	assert.True(t, out.Maintenance)
	assert.False(t, out.Relogin)
	assert.Equal(t, apierror.KindUnavailable, out.Err.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, out.Err.Code)
}

func TestClassifyUnparseableBodies(t *testing.T) {
	out := Classify(respond(200, ``), testURL, ModeEnvelope)
	assert.Equal(t, apierror.MsgDataNotFound, out.Err.Description)

	out = Classify(respond(200, `not json`), testURL, ModeEnvelope)
	assert.Equal(t, apierror.MsgSomethingWrong, out.Err.Description)
	assert.Equal(t, "not json", out.Detail)

	out = Classify(respond(200, `[1,2,3]`), testURL, ModeEnvelope)
	assert.Equal(t, apierror.MsgSomethingWrong, out.Err.Description)
}

func TestClassifyHTMLErrorPageKeepsTitle(t *testing.T) {
	resp := &httpclient.StaticResponse{
		Status:  http.StatusBadGateway,
		Payload: []byte(`<html><head><title>502 Bad Gateway</title></head><body><h1>nginx</h1></body></html>`),
		Headers: http.Header{"Content-Type": []string{"text/html"}},
	}
	out := Classify(resp, testURL, ModeEnvelope)
	require.Equal(t, Failure, out.Kind)
	assert.Equal(t, "502 Bad Gateway", out.Detail)
	assert.Equal(t, http.StatusBadGateway, out.Err.Code)
}

func TestClassifyAccessTokenOnSuccessOnly(t *testing.T) {
	out := Classify(respond(200, `{"status":200,"data":{},"accessToken":"tok-1"}`), testURL, ModeEnvelope)
	assert.Equal(t, "tok-1", out.AccessToken)

	out = Classify(respond(200, `{"status":200,"accessToken":"tok-2"}`), testURL, ModeEnvelope)
	assert.Equal(t, Failure, out.Kind)
	assert.Equal(t, "tok-2", out.AccessToken)

	out = Classify(respond(200, `{"status":500,"accessToken":"tok-3"}`), testURL, ModeEnvelope)
	assert.Empty(t, out.AccessToken)
}

func TestDecodeShapeMismatch(t *testing.T) {
	out := Classify(respond(200, `{"status":200,"data":[{"id":1}]}`), testURL, ModeEnvelope)
	require.Equal(t, Value, out.Kind)

	_, err := Decode[user](out.Data, testURL)
	require.Error(t, err)
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.TitleDataNotDecoded, apiErr.Title)
	assert.Equal(t, http.StatusOK, apiErr.Code)
	assert.NotEmpty(t, apiErr.Description)
}

func TestClassifyUploadErrorCodes(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantCode int
		wantDesc string
	}{
		{"positive code", 400, `{"status":400,"message":1042}`, 1042, apierror.MsgSomethingWrong},
		{"non-positive code", 404, `{"status":404,"message":0}`, 0, apierror.MessageFor(404)},
		{"string message", 400, `{"status":400,"message":"File too large"}`, 400, apierror.MessageFor(400)},
		{"numeric string message", 413, `{"status":413,"message":"42"}`, 413, apierror.MessageFor(413)},
		{"no message", 500, `{"status":500}`, 500, apierror.MessageFor(500)},
		{"not json", 502, `bad gateway`, 502, apierror.MessageFor(502)},
		{"empty", 403, ``, 403, apierror.MessageFor(403)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Classify(respond(tc.status, tc.body), testURL, ModeUpload)
			require.Equal(t, Failure, out.Kind)
			assert.Equal(t, tc.wantCode, out.Err.Code)
			assert.Equal(t, tc.wantDesc, out.Err.Description)
		})
	}
}

func TestClassifyUploadSuccessMatchesEnvelope(t *testing.T) {
	out := Classify(respond(200, `{"status":200,"data":{"url":"https://cdn/x.jpg"},"accessToken":"t"}`), testURL, ModeUpload)
	require.Equal(t, Value, out.Kind)
	assert.Equal(t, "t", out.AccessToken)
}

func TestClassifyRaw(t *testing.T) {
	out := Classify(respond(200, `[{"id":1,"name":"India"}]`), testURL, ModeRaw)
	require.Equal(t, Value, out.Kind)
	got, err := Decode[[]user](out.Data, testURL)
	require.NoError(t, err)
	assert.Equal(t, "India", got[0].Name)

	out = Classify(respond(200, ``), testURL, ModeRaw)
	assert.Equal(t, apierror.MsgDataNotFound, out.Err.Description)

	out = Classify(respond(200, `{oops`), testURL, ModeRaw)
	assert.Equal(t, apierror.MsgSomethingWrong, out.Err.Description)

	out = Classify(respond(http.StatusUnauthorized, `[]`), testURL, ModeRaw)
	assert.True(t, out.Relogin)
}
