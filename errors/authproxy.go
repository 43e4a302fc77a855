package errors

import "net/http"

var (
	AuthorizationEncoding = &Error{synopsis: "authorization error", kinds: []string{"authorization_encoding"}, httpStatus: http.StatusInternalServerError}
	ClientRequest         = &Error{synopsis: "client request error", kinds: []string{"client_request"}, httpStatus: http.StatusBadRequest}
	Configuration         = &Error{synopsis: "configuration error", kinds: []string{"configuration"}, httpStatus: http.StatusInternalServerError}
	RequestBodyLimit      = &Error{synopsis: "request body limit exceeded", kinds: []string{"request_body_limit"}, httpStatus: http.StatusRequestEntityTooLarge}
	RouteNotFound         = &Error{synopsis: "route not found error", kinds: []string{"route_not_found"}, httpStatus: http.StatusNotFound}
	Server                = &Error{synopsis: "internal server error", kinds: []string{"server"}, httpStatus: http.StatusInternalServerError}
	TokenRequest          = &Error{synopsis: "token request error", kinds: []string{"token_request"}, httpStatus: http.StatusInternalServerError}
	Upstream              = &Error{synopsis: "upstream error", kinds: []string{"upstream"}, httpStatus: http.StatusInternalServerError}
)

// SetHeader writes the client safe synopsis of the given error.
func SetHeader(rw http.ResponseWriter, err error) {
	rw.Header().Set(HeaderErrorCode, err.Error())
}

// StatusCode returns the http status for err, falling back to 500.
func StatusCode(err error) int {
	if gerr, ok := err.(GoError); ok && gerr.HTTPStatus() > 0 {
		return gerr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
