package httpx

import (
	"net/http"
	"strconv"
)

// Identity is injected by the auth layer in front of this service as
// trusted headers; this service never sees credentials.
const (
	headerUserID = "X-User-Id"
	headerRole   = "X-User-Role"
)

func userIDFrom(r *http.Request) (int64, bool) {
	v := r.Header.Get(headerUserID)
	if v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func isStaff(r *http.Request) bool {
	return r.Header.Get(headerRole) == "staff"
}

// requireUser writes the 401 itself so handlers can early-return.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := userIDFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid "+headerUserID)
	}
	return id, ok
}

func requireStaff(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := requireUser(w, r); !ok {
		return false
	}
	if !isStaff(r) {
		writeError(w, http.StatusForbidden, "staff only")
		return false
	}
	return true
}
