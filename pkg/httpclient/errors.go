package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/samvad-hq/samvad-api-client/pkg/apierror"
)

var errIsDirectory = errors.New("is a directory")

// TransportError reports a request that produced no HTTP response.
type TransportError struct {
	Code int
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error %d: %v", e.Code, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TransportCode maps a Go network error onto the numeric transport code table.
func TransportCode(err error) int {
	if err == nil {
		return 0
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Code
	}

	switch {
	case errors.Is(err, context.Canceled):
		return apierror.CodeExplicitlyCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return apierror.CodeTimedOut
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierror.CodeTimedOut
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return apierror.CodeCannotFindHost
		}
		return apierror.CodeDNSLookupFailed
	}

	if code, ok := tlsCode(err); ok {
		return code
	}

	switch {
	case errors.Is(err, errIsDirectory):
		return apierror.CodeFileIsDirectory
	case errors.Is(err, fs.ErrNotExist):
		return apierror.CodeFileDoesNotExist
	case errors.Is(err, fs.ErrPermission):
		return apierror.CodeNoPermissionsToReadFile
	case errors.Is(err, syscall.ECONNREFUSED):
		return apierror.CodeCannotConnectToHost
	case errors.Is(err, syscall.ENETUNREACH):
		return apierror.CodeNotConnectedToInternet
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return apierror.CodeNetworkConnectionLost
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "stopped after") && strings.Contains(msg, "redirects"):
		return apierror.CodeHTTPTooManyRedirects
	case strings.Contains(msg, "unsupported protocol scheme"):
		return apierror.CodeUnsupportedURL
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return apierror.CodeBadURL
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return apierror.CodeCannotConnectToHost
		}
		return apierror.CodeNetworkConnectionLost
	}

	return apierror.CodeUnknown
}

func tlsCode(err error) (int, bool) {
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return apierror.CodeServerCertificateHasUnknownRoot, true
	}
	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) {
		if invalid.Reason == x509.Expired {
			return apierror.CodeServerCertificateHasBadDate, true
		}
		return apierror.CodeServerCertificateUntrusted, true
	}
	var hostname x509.HostnameError
	if errors.As(err, &hostname) {
		return apierror.CodeServerCertificateUntrusted, true
	}
	var verify *tls.CertificateVerificationError
	if errors.As(err, &verify) {
		return apierror.CodeServerCertificateUntrusted, true
	}
	var header tls.RecordHeaderError
	if errors.As(err, &header) {
		return apierror.CodeSecureConnectionFailed, true
	}
	if strings.Contains(err.Error(), "tls: ") {
		if strings.Contains(err.Error(), "certificate required") {
			return apierror.CodeClientCertificateRequired, true
		}
		if strings.Contains(err.Error(), "bad certificate") {
			return apierror.CodeClientCertificateRejected, true
		}
		return apierror.CodeSecureConnectionFailed, true
	}
	return 0, false
}
