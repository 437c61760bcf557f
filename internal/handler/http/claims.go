package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

var errNoEmployeeClaim = errors.New("token carries no employee id")

// employeeIDFromRequest extracts the authenticated employee's id from the
// verified token claims. The verifier middleware runs first, so a missing
// claim here means a malformed token, not a missing one.
func employeeIDFromRequest(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", err
	}

	id, ok := claims["employee_id"].(string)
	if !ok || id == "" {
		return "", errNoEmployeeClaim
	}
	return id, nil
}
