package goSession

const (
	// PrincipalNameAttribute is the well-known attribute holding an explicit
	// principal name. When present and non-empty it always wins.
	PrincipalNameAttribute = "PRINCIPAL_NAME"
	// SecurityContextAttribute is the well-known attribute holding a
	// security-context object consulted when no explicit principal name is
	// set. The stored value opts in by implementing [PrincipalHolder].
	SecurityContextAttribute = "SECURITY_CONTEXT"
)

// PrincipalHolder is the capability a security-context value implements to
// expose the authenticated principal. Resolution is a capability check on
// the decoded value, not reflective field access.
type PrincipalHolder interface {
	PrincipalName() string
}

// ResolvePrincipal returns the principal name the session currently asserts,
// if any. The explicit [PrincipalNameAttribute] wins; otherwise the decoded
// [SecurityContextAttribute] value is consulted through [PrincipalHolder].
// Any failure to decode or extract yields no principal rather than an error.
func (s *Store) ResolvePrincipal(sess *Session) (string, bool) {
	name := s.resolvePrincipal(sess)
	return name, name != ""
}

func (s *Store) resolvePrincipal(sess *Session) string {
	if encoded, ok := sess.attributes[PrincipalNameAttribute]; ok {
		if value, err := s.codec.Decode(encoded); err == nil {
			if name, ok := value.(string); ok && name != "" {
				return name
			}
		}
	}

	if encoded, ok := sess.attributes[SecurityContextAttribute]; ok {
		if value, err := s.codec.Decode(encoded); err == nil {
			if holder, ok := value.(PrincipalHolder); ok {
				return holder.PrincipalName()
			}
		}
	}

	return ""
}
