package policy

// Ownable is an interface for resources that have an owner.
// Implement this on models to enable ownership-based authorization.
type Ownable interface {
	GetUserID() uint
}

// Owns reports whether the user owns the resource. The owner id is an opaque
// identity: it is only ever compared for equality, never interpreted.
// A nil resource is denied by default so a missing load can never grant access.
func Owns(userID uint, resource Ownable) bool {
	if resource == nil {
		return false
	}
	return resource.GetUserID() == userID
}
