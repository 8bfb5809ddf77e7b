package services

import (
	"context"
	"net"
	"regexp"
	"strings"

	"valentine/internal/domain"
)

// Email regex pattern (RFC 5322 simplified).
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Common disposable email domains to block.
var disposableDomains = map[string]struct{}{
	"tempmail.com":      {},
	"throwaway.email":   {},
	"10minutemail.com":  {},
	"guerrillamail.com": {},
	"mailinator.com":    {},
	"maildrop.cc":       {},
	"temp-mail.org":     {},
	"yopmail.com":       {},
	"sharklasers.com":   {},
	"trashmail.com":     {},
	"getnada.com":       {},
	"fakeinbox.com":     {},
}

// Known misspellings of popular providers, keyed by the canonical domain.
var commonDomainTypos = map[string][]string{
	"gmail.com":   {"gmai.com", "gmial.com", "gmali.com", "gmaill.com"},
	"yahoo.com":   {"yahooo.com", "yaho.com", "yhoo.com"},
	"hotmail.com": {"hotmai.com", "hotmial.com", "hotmil.com"},
	"outlook.com": {"outlok.com", "outloo.com"},
}

// MXResolver performs the mail-exchange lookup used for domain liveness.
// *net.Resolver satisfies it.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

type emailValidator struct {
	resolver MXResolver
}

// NewEmailValidator returns the validator for candidate sender addresses.
// A nil resolver falls back to net.DefaultResolver.
func NewEmailValidator(resolver MXResolver) domain.EmailValidator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &emailValidator{resolver: resolver}
}

// Validate runs the checks in order, short-circuiting on the first failure:
// presence, length, syntax, disposable domain, known typo, MX lookup.
// The MX lookup is attempted exactly once; a lookup failure is treated as
// domain-does-not-exist, not as a transient error.
func (v *emailValidator) Validate(ctx context.Context, email string) domain.EmailValidationResult {
	if email == "" {
		return invalid("Email is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	if len(email) < 3 || len(email) > 254 {
		return invalid("Email length is invalid")
	}
	if !emailPattern.MatchString(email) {
		return invalid("Email format is invalid")
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return invalid("Email format is invalid")
	}
	dom := email[at+1:]

	if _, ok := disposableDomains[dom]; ok {
		return invalid("Disposable email addresses are not allowed")
	}

	if correct := checkCommonTypos(dom); correct != "" {
		return invalid("Did you mean " + correct + "?")
	}

	mxRecords, err := v.resolver.LookupMX(ctx, dom)
	if err != nil {
		return invalid("Invalid email domain - domain does not exist")
	}
	if len(mxRecords) == 0 {
		return invalid("Email domain cannot receive emails")
	}

	return domain.EmailValidationResult{Valid: true}
}

func checkCommonTypos(dom string) string {
	for correct, typos := range commonDomainTypos {
		for _, typo := range typos {
			if dom == typo {
				return correct
			}
		}
	}
	return ""
}

func invalid(reason string) domain.EmailValidationResult {
	return domain.EmailValidationResult{Valid: false, Reason: reason}
}
