package dto

type LoginInput struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type IdentityOutput struct {
	ID    string
	Name  string
	Email string
	Role  string
	// Offline is set when the identity came from the local directory and no
	// credential backs it.
	Offline bool
}

type DirectoryAccountInput struct {
	ID       string
	Name     string
	Email    string
	Role     string
	Password string
}
