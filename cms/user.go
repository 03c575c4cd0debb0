package cms

// User identifies the actor behind a mutation. The core records the
// login into audit columns and nothing more; authentication happens
// elsewhere.
type User struct {
	ID    int64
	Login string
}

// SystemUser is the actor recorded for mutations no human triggered.
func SystemUser() *User {
	return &User{ID: 0, Login: "system"}
}
