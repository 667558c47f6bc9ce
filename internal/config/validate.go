package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidTopology is wrapped by every topology construction failure
	ErrInvalidTopology = errors.New("invalid topology")
	// ErrInvalidSettings is wrapped by server and sync settings failures
	ErrInvalidSettings = errors.New("invalid settings")
)

// endpointSegment matches one literal segment of an endpoint path
var endpointSegment = regexp.MustCompile(`^[A-Za-z0-9._~!$&'()*+,;=:@-]+$`)

// validate is a singleton validator reporting fields by their YAML names
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError collects every problem found while checking a config section
type ValidationError struct {
	Kind     error
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func (e *ValidationError) addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) addStruct(s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		e.addf("%v", err)
		return
	}
	for _, fe := range fieldErrs {
		e.Problems = append(e.Problems, describeFieldError(fe))
	}
}

func (e *ValidationError) errOrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// describeFieldError converts a validator error into a readable sentence
func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: field is required", field)
	case "min":
		return fmt.Sprintf("%s: must have at least %s entries", field, fe.Param())
	case "unique":
		return fmt.Sprintf("%s: %s values must be unique", field, strings.ToLower(fe.Param()))
	case "excludes":
		return fmt.Sprintf("%s: must not contain %q", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s: must not exceed %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s: must not be below %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s: must be a valid URL", field)
	default:
		return fmt.Sprintf("%s: validation failed (%s)", field, fe.Tag())
	}
}

// validateSettings checks the server and sync sections
func (c *Config) validateSettings() error {
	verr := &ValidationError{Kind: ErrInvalidSettings}
	verr.addStruct(c.Server)
	verr.addStruct(c.Sync)
	if c.Sync.Timeout < 0 {
		verr.addf("timeout: must not be negative")
	}
	if c.Sync.Cooldown < 0 {
		verr.addf("cooldown: must not be negative")
	}
	return verr.errOrNil()
}

// validateEndpoint accepts absolute http(s) URLs and absolute paths. Paths are
// resolved against the sync client's base URL.
func validateEndpoint(endpoint string) (*url.URL, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("endpoint: must not be empty")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("endpoint: %w", err)
	}

	if u.IsAbs() {
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("endpoint: unsupported scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return nil, errors.New("endpoint: missing host")
		}
		if u.Path == "" {
			u.Path = "/"
		}
	} else if u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return nil, fmt.Errorf("endpoint: %q is neither an absolute URL nor an absolute path", endpoint)
	}

	if err := validateEndpointPath(u.Path); err != nil {
		return nil, err
	}
	return u, nil
}

// validateEndpointPath keeps the path usable as a literal route: clean
// segments of URL path characters only
func validateEndpointPath(path string) error {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, seg := range segments {
		if seg == "" {
			// only the trailing slash may leave an empty segment
			if i == len(segments)-1 {
				continue
			}
			return fmt.Errorf("endpoint: path %q has an empty segment", path)
		}
		if seg == "." || seg == ".." {
			return fmt.Errorf("endpoint: path %q is not clean", path)
		}
		if !endpointSegment.MatchString(seg) {
			return fmt.Errorf("endpoint: path %q contains characters not allowed in a route", path)
		}
	}
	return nil
}
