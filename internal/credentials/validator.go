package credentials

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

type Kind string

const (
	KindSignUp         Kind = "sign-up"
	KindSignIn         Kind = "sign-in"
	KindChangePassword Kind = "change-password"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
	passwordMinLen = 8
	// bcrypt ignores input past 72 bytes; refuse it instead of truncating.
	passwordMaxBytes = 72
)

var usernamePattern = regexp.MustCompile(`^@[a-zA-Z0-9_]{3,20}$`)

const (
	msgUsernameTooShort = "Username must be at least 3 characters long"
	msgUsernameTooLong  = "Username cannot exceed 20 characters"
	msgUsernameFormat   = "Username must start with @ and can only contain letters, numbers, and underscores"
	msgEmailInvalid     = "Please enter a valid email address"
	msgPasswordTooShort = "Password must be at least 8 characters long"
	msgPasswordTooLong  = "Password cannot exceed 72 bytes"
	msgRoleRequired     = "Role ID is required"
	msgIdentityRequired = "Either username or email must be provided"
)

// Payload is the raw credential input of sign-up, sign-in and
// change-password. Unused fields are ignored per kind.
type Payload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   string `json:"roleId"`
}

type Result struct {
	Normalized Payload
	Errors     ValidationErrors
}

func (r Result) OK() bool { return len(r.Errors) == 0 }

// Err returns the collected field errors, or nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return r.Errors
}

// Validate checks p against the rules of kind and returns every violation.
// Username and email are lower-cased in Normalized.
func Validate(kind Kind, p Payload) Result {
	n := Payload{
		Username: strings.ToLower(strings.TrimSpace(p.Username)),
		Email:    strings.ToLower(strings.TrimSpace(p.Email)),
		Password: p.Password,
		RoleID:   strings.TrimSpace(p.RoleID),
	}
	var errs ValidationErrors

	switch kind {
	case KindSignUp:
		errs = append(errs, checkUsername(n.Username)...)
		errs = append(errs, checkEmail(n.Email)...)
		errs = append(errs, checkPassword(n.Password)...)
		if n.RoleID == "" {
			errs = append(errs, FieldError{Field: "roleId", Message: msgRoleRequired})
		}
	case KindSignIn:
		if n.Username == "" && n.Email == "" {
			errs = append(errs, FieldError{Field: "username", Message: msgIdentityRequired})
		}
		if n.Username != "" {
			errs = append(errs, checkUsername(n.Username)...)
		}
		if n.Email != "" {
			errs = append(errs, checkEmail(n.Email)...)
		}
		errs = append(errs, checkPassword(n.Password)...)
		n.RoleID = ""
	case KindChangePassword:
		errs = append(errs, checkPassword(n.Password)...)
		n = Payload{Password: n.Password}
	default:
		errs = append(errs, FieldError{Field: "kind", Message: "unknown credential kind " + string(kind)})
	}

	return Result{Normalized: n, Errors: errs}
}

func checkUsername(u string) []FieldError {
	var errs []FieldError
	n := utf8.RuneCountInString(u)
	if n < usernameMinLen {
		errs = append(errs, FieldError{Field: "username", Message: msgUsernameTooShort})
	}
	if n > usernameMaxLen {
		errs = append(errs, FieldError{Field: "username", Message: msgUsernameTooLong})
	}
	if !usernamePattern.MatchString(u) {
		errs = append(errs, FieldError{Field: "username", Message: msgUsernameFormat})
	}
	return errs
}

func checkEmail(e string) []FieldError {
	if !validEmail(e) {
		return []FieldError{{Field: "email", Message: msgEmailInvalid}}
	}
	return nil
}

// validEmail accepts a bare addr-spec with a dotted domain.
func validEmail(e string) bool {
	if e == "" {
		return false
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(e, '@')
	domain := e[at+1:]
	return at > 0 && strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func checkPassword(p string) []FieldError {
	var errs []FieldError
	if utf8.RuneCountInString(p) < passwordMinLen {
		errs = append(errs, FieldError{Field: "password", Message: msgPasswordTooShort})
	}
	if len(p) > passwordMaxBytes {
		errs = append(errs, FieldError{Field: "password", Message: msgPasswordTooLong})
	}
	return errs
}
