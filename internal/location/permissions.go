package location

// Permission names a location access level.
type Permission string

const (
	Coarse Permission = "coarse"
	Fine   Permission = "fine"
)

// Permissions reports which location permissions the user granted.
type Permissions interface {
	Granted(p Permission) bool
}

// StaticPermissions is a fixed permission set, typically read from config.
type StaticPermissions map[Permission]bool

func (s StaticPermissions) Granted(p Permission) bool {
	return s[p]
}

// AnyGranted reports whether coarse or fine access is available.
func AnyGranted(p Permissions) bool {
	if p == nil {
		return false
	}
	return p.Granted(Fine) || p.Granted(Coarse)
}

// AllGranted reports whether both coarse and fine access are available.
func AllGranted(p Permissions) bool {
	if p == nil {
		return false
	}
	return p.Granted(Fine) && p.Granted(Coarse)
}

type rationalePermissions struct {
	Permissions
	rationale bool
}

func (r rationalePermissions) ShouldShowRationale() bool {
	return r.rationale
}

// WithRationale marks p as belonging to a user who already declined once
// and should be told why location access is needed.
func WithRationale(p Permissions, show bool) Permissions {
	return rationalePermissions{Permissions: p, rationale: show}
}

// ShouldShowRationale reports whether p asks for an explanation prompt.
func ShouldShowRationale(p Permissions) bool {
	r, ok := p.(interface{ ShouldShowRationale() bool })
	return ok && r.ShouldShowRationale()
}
