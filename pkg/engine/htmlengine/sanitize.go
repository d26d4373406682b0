package htmlengine

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// DefaultPolicy is the sanitizer installed by WithDefaultSanitizer: bluemonday
// UGC rules plus the class attribute and a few sectioning elements. Point
// markers are stripped, so substituted markup cannot forge points of the
// enclosing template.
func DefaultPolicy() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		policy.AllowElements("section", "article", "header", "footer", "nav", "aside")
		contentPolicy = policy
	})
	return contentPolicy
}
