package apierror

import "net/http"

// Transport codes reported when no HTTP response was received. The numbering follows the
// URL loading error domain so codes stay stable across client platforms.
const (
	CodeExplicitlyCancelled = 15

	CodeBackgroundSessionRequiresSharedContainer = -995
	CodeBackgroundSessionInUseByAnotherProcess   = -996
	CodeBackgroundSessionWasDisconnected         = -997
	CodeUnknown                                  = -1
	CodeCancelled                                = -999
	CodeBadURL                                   = -1000
	CodeTimedOut                                 = -1001
	CodeUnsupportedURL                           = -1002
	CodeCannotFindHost                           = -1003
	CodeCannotConnectToHost                      = -1004
	CodeNetworkConnectionLost                    = -1005
	CodeDNSLookupFailed                          = -1006
	CodeHTTPTooManyRedirects                     = -1007
	CodeResourceUnavailable                      = -1008
	CodeNotConnectedToInternet                   = -1009
	CodeRedirectToNonExistentLocation            = -1010
	CodeBadServerResponse                        = -1011
	CodeUserCancelledAuthentication              = -1012
	CodeUserAuthenticationRequired               = -1013
	CodeZeroByteResource                         = -1014
	CodeCannotDecodeRawData                      = -1015
	CodeCannotDecodeContentData                  = -1016
	CodeCannotParseResponse                      = -1017
	CodeInternationalRoamingOff                  = -1018
	CodeCallIsActive                             = -1019
	CodeDataNotAllowed                           = -1020
	CodeRequestBodyStreamExhausted               = -1021
	CodeSecureConnectionRequired                 = -1022
	CodeFileDoesNotExist                         = -1100
	CodeFileIsDirectory                          = -1101
	CodeNoPermissionsToReadFile                  = -1102
	CodeDataLengthExceedsMaximum                 = -1103
	CodeSecureConnectionFailed                   = -1200
	CodeServerCertificateHasBadDate              = -1201
	CodeServerCertificateUntrusted               = -1202
	CodeServerCertificateHasUnknownRoot          = -1203
	CodeServerCertificateNotYetValid             = -1204
	CodeClientCertificateRejected                = -1205
	CodeClientCertificateRequired                = -1206
	CodeCannotLoadFromNetwork                    = -2000
	CodeCannotCreateFile                         = -3000
	CodeCannotOpenFile                           = -3001
	CodeCannotCloseFile                          = -3002
	CodeCannotWriteToFile                        = -3003
	CodeCannotRemoveFile                         = -3004
	CodeCannotMoveFile                           = -3005
	CodeDownloadDecodingFailedMidStream          = -3006
	CodeDownloadDecodingFailedToComplete         = -3007
)

const retryLater = " Please try again in a while."

// UnstableNetworkMessage is returned for every code the table does not know.
const UnstableNetworkMessage = "Looks like you have an unstable network at the moment." + retryLater

var messages = map[int]string{
	http.StatusBadRequest:          "The server cannot or will not process the request due to an apparent client error.",
	http.StatusUnauthorized:        "Authentication is required and has failed or has not yet been provided.",
	http.StatusPaymentRequired:     "Authentication Required.",
	http.StatusForbidden:           "The request was valid, but the server is refusing action. The user might not have the necessary permissions for a resource.",
	http.StatusNotFound:            "The requested resource could not be found but may be available in the future. Subsequent requests by the client are permissible.",
	http.StatusInternalServerError: "A generic error message, given when an unexpected condition was encountered and no more specific message is suitable.",
	http.StatusBadGateway:          "The server was acting as a gateway or proxy and received an invalid response from the upstream server.",
	http.StatusServiceUnavailable:  "The server is currently unavailable (because it is overloaded or down for maintenance). Generally, this is a temporary state.",

	CodeUnknown:                       "An unknown error occurred." + retryLater,
	CodeCancelled:                     "The connection was cancelled." + retryLater,
	CodeBadURL:                        "The connection failed due to a malformed URL." + retryLater,
	CodeTimedOut:                      UnstableNetworkMessage,
	CodeUnsupportedURL:                "The connection failed due to an unsupported URL scheme." + retryLater,
	CodeCannotFindHost:                "The connection failed because the host could not be found." + retryLater,
	CodeCannotConnectToHost:           "The connection failed because a connection cannot be made to the host." + retryLater,
	CodeNetworkConnectionLost:         "The connection failed because the network connection was lost." + retryLater,
	CodeDNSLookupFailed:               "The connection failed because the DNS lookup failed." + retryLater,
	CodeHTTPTooManyRedirects:          "The HTTP connection failed due to too many redirects." + retryLater,
	CodeResourceUnavailable:           "The connection's resource is unavailable." + retryLater,
	CodeNotConnectedToInternet:        "The connection failed because the device is not connected to the internet." + retryLater,
	CodeRedirectToNonExistentLocation: "The connection was redirected to a nonexistent location." + retryLater,
	CodeBadServerResponse:             "The connection received an invalid server response." + retryLater,
	CodeUserCancelledAuthentication:   "The connection failed because the user cancelled required authentication." + retryLater,
	CodeUserAuthenticationRequired:    "The connection failed because authentication is required." + retryLater,
	CodeZeroByteResource:              "The resource retrieved by the connection is zero bytes." + retryLater,
	CodeCannotDecodeRawData:           "The connection cannot decode data encoded with a known content encoding." + retryLater,
	CodeCannotDecodeContentData:       "The connection cannot decode data encoded with an unknown content encoding." + retryLater,
	CodeCannotParseResponse:           "The connection cannot parse the server's response." + retryLater,
	CodeSecureConnectionRequired:      "The resource could not be loaded because the transport security policy requires the use of a secure connection." + retryLater,
	CodeFileDoesNotExist:              "The file operation failed because the file does not exist." + retryLater,
	CodeFileIsDirectory:               "The file operation failed because the file is a directory." + retryLater,
	CodeNoPermissionsToReadFile:       "The file operation failed because it does not have permission to read the file." + retryLater,
	CodeDataLengthExceedsMaximum:      "The file operation failed because the file is too large." + retryLater,

	CodeSecureConnectionFailed:          "The secure connection failed for an unknown reason." + retryLater,
	CodeServerCertificateHasBadDate:     "The secure connection failed because the server's certificate has an invalid date." + retryLater,
	CodeServerCertificateUntrusted:      "The secure connection failed because the server's certificate is not trusted." + retryLater,
	CodeServerCertificateHasUnknownRoot: "The secure connection failed because the server's certificate has an unknown root." + retryLater,
	CodeServerCertificateNotYetValid:    "The secure connection failed because the server's certificate is not yet valid." + retryLater,
	CodeClientCertificateRejected:       "The secure connection failed because the client's certificate was rejected." + retryLater,
	CodeClientCertificateRequired:       "The secure connection failed because the server requires a client certificate." + retryLater,
	CodeCannotLoadFromNetwork:           "The connection failed because it is being required to return a cached resource, but one is not available." + retryLater,

	CodeCannotCreateFile:                 "The file cannot be created." + retryLater,
	CodeCannotOpenFile:                   "The file cannot be opened." + retryLater,
	CodeCannotCloseFile:                  "The file cannot be closed." + retryLater,
	CodeCannotWriteToFile:                "The file cannot be written." + retryLater,
	CodeCannotRemoveFile:                 "The file cannot be removed." + retryLater,
	CodeCannotMoveFile:                   "The file cannot be moved." + retryLater,
	CodeDownloadDecodingFailedMidStream:  "The download failed because decoding of the downloaded data failed mid-stream." + retryLater,
	CodeDownloadDecodingFailedToComplete: "The download failed because decoding of the downloaded data failed to complete." + retryLater,

	CodeInternationalRoamingOff:    "The connection failed because international roaming is disabled on the device." + retryLater,
	CodeCallIsActive:               "The connection failed because a call is active." + retryLater,
	CodeDataNotAllowed:             "The connection failed because data use is currently not allowed on the device." + retryLater,
	CodeRequestBodyStreamExhausted: "The connection failed because its request's body stream was exhausted." + retryLater,

	CodeBackgroundSessionRequiresSharedContainer: "Background session required shared container at the moment." + retryLater,
	CodeBackgroundSessionInUseByAnotherProcess:   "Background session is in use by another network process at the moment." + retryLater,
	CodeBackgroundSessionWasDisconnected:         "Background session disconnected." + retryLater,
}

// MessageFor maps an HTTP status or transport code to a user-facing message.
// Unknown codes fall back to UnstableNetworkMessage.
func MessageFor(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return UnstableNetworkMessage
}

// Known reports whether the table carries a dedicated message for code.
func Known(code int) bool {
	_, ok := messages[code]
	return ok
}
