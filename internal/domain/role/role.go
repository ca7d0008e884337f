// Package role rewrites assembled content for an audience role and checks that a
// rewrite kept the document's meaning.
//
// Generic concepts ("meeting", "task", ...) are swapped for role phrases as whole
// words; unknown words are never touched. Keyword, action and question fields are
// replaced from role pools keyed by the bucket the assembler used.
package role

import (
	"strings"

	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
)

// Role is the closed audience enumeration. The zero value is the neutral role.
type Role string

const (
	Neutral      Role = ""
	Student      Role = "student"
	OfficeWorker Role = "office_worker"
	Freelancer   Role = "freelancer"
)

// All lists the non-neutral roles.
var All = []Role{Student, OfficeWorker, Freelancer}

// IsValid reports whether r is one of the enumerated roles, neutral included.
func (r Role) IsValid() bool {
	switch r {
	case Neutral, Student, OfficeWorker, Freelancer:
		return true
	default:
		return false
	}
}

// IsNeutral reports whether r means "no translation".
func (r Role) IsNeutral() bool { return r == Neutral }

func (r Role) String() string {
	if r == Neutral {
		return "neutral"
	}
	return string(r)
}

// ParseRole parses a role token. Empty and "neutral" mean the neutral role;
// hyphens are accepted in place of underscores.
func ParseRole(token string) (Role, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.ReplaceAll(t, "-", "_")
	if t == "neutral" {
		return Neutral, nil
	}
	r := Role(t)
	if !r.IsValid() {
		return Neutral, shared.Validationf("role", "ParseRole", shared.ErrUnsupportedRole,
			"unsupported role %q: want one of student, office_worker, freelancer", token)
	}
	return r, nil
}
