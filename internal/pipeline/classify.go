package pipeline

import (
	"errors"
	"strings"

	"github.com/dyike/AdvisorGo/internal/storage"
)

// Kind is the recovery class of a failed run.
type Kind string

const (
	KindRateLimit          Kind = "rate_limit"
	KindPolicyBlock        Kind = "policy_block"
	KindStorageUnavailable Kind = "storage_unavailable"
	KindUnclassified       Kind = "unclassified"
)

var (
	rateLimitMarkers = []string{
		"ratelimiterror",
		"rate limit",
		"temporarily rate-limited",
		`"code":429`,
		" code:429",
		"status code: 429",
	}
	policyBlockMarkers = []string{
		"no endpoints found matching your data policy",
		"free model publication",
		"configure: https://openrouter.ai/settings/privacy",
	}
)

// Classify matches err against the known provider and storage failures.
// Matching is case-insensitive on the full error text.
func Classify(err error) Kind {
	if err == nil {
		return KindUnclassified
	}
	if errors.Is(err, storage.ErrReadOnly) {
		return KindStorageUnavailable
	}
	text := strings.ToLower(err.Error())
	switch {
	case containsAny(text, rateLimitMarkers):
		return KindRateLimit
	case containsAny(text, policyBlockMarkers):
		return KindPolicyBlock
	case strings.Contains(text, "readonly database"):
		return KindStorageUnavailable
	}
	return KindUnclassified
}

func IsRateLimit(err error) bool   { return Classify(err) == KindRateLimit }
func IsPolicyBlock(err error) bool { return Classify(err) == KindPolicyBlock }

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
