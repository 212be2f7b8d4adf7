package http

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // IANA zones for ?tz= on hosts without zoneinfo

	"github.com/gin-gonic/gin"

	"pocketledger/internal/core"
)

var errMalformedBody = fmt.Errorf("%w: malformed request body", core.ErrValidation)

// bindJSON decodes the request body into v. An empty body leaves v untouched.
func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

func queryBool(c *gin.Context, key string) (bool, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", core.ErrValidation, key)
	}
	return b, nil
}

// queryInt parses a non-negative integer; a missing value is 0.
func queryInt(c *gin.Context, key string) (int, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", core.ErrValidation, key)
	}
	return n, nil
}

func queryTime(c *gin.Context, key string) (time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", core.ErrValidation, key)
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be an RFC3339 timestamp", core.ErrValidation, key)
	}
	return t, nil
}

// queryLocation resolves ?tz=; a missing value means UTC.
func queryLocation(c *gin.Context) (*time.Location, error) {
	tz := strings.TrimSpace(c.Query("tz"))
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", core.ErrValidation, tz)
	}
	return loc, nil
}
