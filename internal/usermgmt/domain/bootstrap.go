package domain

type BootstrapData struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string // Empty generates one
}

type BootstrapResult struct {
	Admin             User
	GeneratedPassword string // Set only when the password was generated
}
