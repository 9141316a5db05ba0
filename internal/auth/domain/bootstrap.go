package domain

// BootstrapData seeds the first administrator when the user table is empty.
type BootstrapData struct {
	AdminEmail    string
	AdminPassword string
}
