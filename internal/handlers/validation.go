package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/necatisahhin/zeroAiBackend/internal/apperr"
)

const maxBodyBytes = 1 << 20

// validationCodes maps each validation message to its stable client code.
var validationCodes = map[string]string{
	"Full name is required":                          "VALL_ERROR_01",
	"Full name must be between 2 and 100 characters": "VALL_ERROR_02",
	"Full name must be a string":                     "VALL_ERROR_03",
	"Email is required":                              "VALL_ERROR_04",
	"Invalid email format":                           "VALL_ERROR_05",
	"Email must be a string":                         "VALL_ERROR_06",
	"Email already in use":                           "VALL_ERROR_07",
	"Password is required":                           "VALL_ERROR_08",
	"Password must be at least 8 characters long":    "VALL_ERROR_09",
	"Password must be a string":                      "VALL_ERROR_10",
	msgWeakPassword:                                  "VALL_ERROR_11",
	"Social media links must be an object":           "VALL_ERROR_12",
	"Invalid YouTube URL":                            "VALL_ERROR_13",
	"Invalid Instagram URL":                          "VALL_ERROR_14",
	"Invalid Twitter URL":                            "VALL_ERROR_15",
	"Invalid Facebook URL":                           "VALL_ERROR_16",
	"Invalid LinkedIn URL":                           "VALL_ERROR_17",

	"Restaurant name is required":                          "VALL_ERROR_18",
	"Restaurant name must be between 2 and 100 characters": "VALL_ERROR_19",
	"Restaurant name must be a string":                     "VALL_ERROR_20",
	"Address is required":                                  "VALL_ERROR_21",
	"Address must be between 5 and 200 characters":         "VALL_ERROR_22",
	"Address must be a string":                             "VALL_ERROR_23",
	"Phone number must be a string":                        "VALL_ERROR_24",
	"Invalid phone number format":                          "VALL_ERROR_25",
	"Restaurant ID is required":                            "VALL_ERROR_26",
	"Restaurant ID must be a string":                       "VALL_ERROR_27",

	"Role must be a string":       "VALL_ERROR_28",
	"Invalid role":                "VALL_ERROR_29",
	"is_active must be a boolean": "VALL_ERROR_30",
}

const msgWeakPassword = "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"

// typeMessages is used when a field carries the wrong JSON type.
var typeMessages = map[string]string{
	"fullname":                      "Full name must be a string",
	"email":                         "Email must be a string",
	"password":                      "Password must be a string",
	"socialMediaLinks":              "Social media links must be an object",
	"socialMediaLinks.youtubeUrl":   "Invalid YouTube URL",
	"socialMediaLinks.instagramUrl": "Invalid Instagram URL",
	"socialMediaLinks.twitterUrl":   "Invalid Twitter URL",
	"socialMediaLinks.facebookUrl":  "Invalid Facebook URL",
	"socialMediaLinks.linkedinUrl":  "Invalid LinkedIn URL",
	"name":                          "Restaurant name must be a string",
	"address":                       "Address must be a string",
	"phoneNumber":                   "Phone number must be a string",
	"id":                            "Restaurant ID must be a string",
	"role":                          "Role must be a string",
	"is_active":                     "is_active must be a boolean",
}

// ruleMessages is keyed by "<json path>.<tag>".
var ruleMessages = map[string]string{
	"fullname.required": "Full name is required",
	"fullname.min":      "Full name must be between 2 and 100 characters",
	"fullname.max":      "Full name must be between 2 and 100 characters",

	"email.required": "Email is required",
	"email.email":    "Invalid email format",

	"password.required":       "Password is required",
	"password.min":            "Password must be at least 8 characters long",
	"password.strongpassword": msgWeakPassword,

	"socialMediaLinks.youtubeUrl.weburl":   "Invalid YouTube URL",
	"socialMediaLinks.instagramUrl.weburl": "Invalid Instagram URL",
	"socialMediaLinks.twitterUrl.weburl":   "Invalid Twitter URL",
	"socialMediaLinks.facebookUrl.weburl":  "Invalid Facebook URL",
	"socialMediaLinks.linkedinUrl.weburl":  "Invalid LinkedIn URL",

	"name.required":     "Restaurant name is required",
	"name.min":          "Restaurant name must be between 2 and 100 characters",
	"name.max":          "Restaurant name must be between 2 and 100 characters",
	"address.required":  "Address is required",
	"address.min":       "Address must be between 5 and 200 characters",
	"address.max":       "Address must be between 5 and 200 characters",
	"phoneNumber.phone": "Invalid phone number format",
	"id.required":       "Restaurant ID is required",

	"role.oneof": "Invalid role",
}

func validationError(message string) *apperr.Error {
	code, ok := validationCodes[message]
	if !ok {
		code = "VALL_ERROR_00"
	}
	return apperr.Validation(code, message)
}

// normalizer is implemented by requests that trim their input before validation.
type normalizer interface {
	normalize()
}

var setupValidatorOnce sync.Once

// setupValidator registers the custom rules on gin's validator engine and
// makes field errors report JSON names.
func setupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		rules := map[string]validator.Func{
			"strongpassword": strongPassword,
			"phone":          phoneNumber,
			"weburl":         webURL,
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("register validation %q: %v", tag, err))
			}
		}
	})
}

const passwordSpecials = "@$!%*?&"

// strongPassword needs a lower and upper case letter, a digit and one of
// @$!%*?&, and must start with one of those character classes.
func strongPassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}

	allowed := func(r rune) bool {
		return r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(passwordSpecials, r))
	}
	if !allowed([]rune(value)[0]) {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// phoneNumber accepts an optional leading + and 7 to 15 digits, ignoring
// spaces, dashes, dots and parentheses.
func phoneNumber(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	value = strings.TrimPrefix(value, "+")

	digits := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

// webURL accepts http(s) URLs with or without the scheme, like
// "instagram.com/name".
func webURL(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" || strings.ContainsAny(value, " \t\n") {
		return false
	}
	if !strings.Contains(value, "://") {
		value = "https://" + value
	}

	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	return strings.Contains(host, ".") && !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, ".")
}

// bindStrict decodes a JSON object into dst. Keys outside allowed are
// rejected together, type mismatches and rule failures report the first
// offending field.
func bindStrict(c *gin.Context, dst any, allowed ...string) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return apperr.Validation("VALIDATION_ERROR", "Unable to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	keys, err := objectKeys(body)
	if err != nil {
		return apperr.Validation("VALIDATION_ERROR", "Request body must be a JSON object")
	}

	var extra []string
	for _, key := range keys {
		if !slices.Contains(allowed, key) {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		return apperr.Validation("VALIDATION_ERROR", "Unexpected fields: "+strings.Join(extra, ", "))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if message, ok := typeMessages[typeErr.Field]; ok {
				return validationError(message)
			}
			return validationError(fmt.Sprintf("%s has an invalid type", typeErr.Field))
		}
		return apperr.Validation("VALIDATION_ERROR", "Request body must be a JSON object")
	}

	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}

	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return translateValidation(err)
	}
	return nil
}

func translateValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("VALIDATION_ERROR", "Invalid request")
	}

	fe := fieldErrs[0]
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}

	if message, ok := ruleMessages[path+"."+fe.Tag()]; ok {
		return validationError(message)
	}
	return validationError(fmt.Sprintf("%s is invalid", path))
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(body []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("not a json object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("invalid object key")
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return keys, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
