package utils

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// --- HTTP Response Helpers ---

// StatusErrorResponse returns a {status:"error", message} JSON response
func StatusErrorResponse(re *core.RequestEvent, status int, message string) error {
	return re.JSON(status, map[string]string{
		"status":  "error",
		"message": message,
	})
}

// BadRequestResponse returns a 400 {status:"error"} JSON response
func BadRequestResponse(re *core.RequestEvent, message string) error {
	return StatusErrorResponse(re, http.StatusBadRequest, message)
}

// SuccessResponse returns a 200 {status:"success", message} JSON response.
// Extra keys are merged into the body.
func SuccessResponse(re *core.RequestEvent, message string, extra map[string]any) error {
	body := map[string]any{
		"status":  "success",
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	return re.JSON(http.StatusOK, body)
}

// WantsJSON reports whether the client asked for a JSON answer instead of a redirect.
func WantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// --- Form Helpers ---

// FormBool interprets a checkbox/select value. Anything but a known yes is false.
func FormBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "on", "true", "1":
		return true
	}
	return false
}

// ParsePage reads ?page= and clamps it to 1 or more.
func ParsePage(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	return page
}

// TotalPages returns the page count for total items at perPage items per page.
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
